package sessions

import "time"

// Session is one login instance tracked by the server. A session stops being
// active either by reaching ExpiresAt or by an explicit logout, which records
// who initiated it.
type Session struct {
	ID              string     `bson:"_id,omitempty" json:"id"`
	SessionID       string     `bson:"sessionId" json:"sessionId"`
	CPF             string     `bson:"cpf" json:"cpf"`
	Active          bool       `bson:"active" json:"active"`
	LogoutInitiator string     `bson:"logoutInitiator,omitempty" json:"logoutInitiator,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	ExpiresAt       time.Time  `bson:"expiresAt" json:"expiresAt"`
	ClosedAt        *time.Time `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
}
