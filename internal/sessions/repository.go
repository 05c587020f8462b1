package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository provides session persistence operations
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, sessionID string) (*Session, error)
	Deactivate(ctx context.Context, sessionID, initiator string) error
}

// MongoRepository implements Repository using a Mongo collection
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(24 * time.Hour)
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	if err := r.col.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) Deactivate(ctx context.Context, sessionID, initiator string) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": bson.M{
		"active":          false,
		"logoutInitiator": initiator,
		"closedAt":        now,
	}})
	return err
}
