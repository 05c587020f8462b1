package users

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fga-eps-mds/capju-session-go/internal/models"
)

// Repository defines persistence operations for user accounts
type Repository interface {
	GetByCPF(ctx context.Context, cpf string) (*models.Account, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates a new repository for the given collection
func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) GetByCPF(ctx context.Context, cpf string) (*models.Account, error) {
	var a models.Account
	if err := r.col.FindOne(ctx, bson.M{"cpf": cpf}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
