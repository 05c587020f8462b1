package models

import "time"

// Role groups the permission snapshot attached to a user profile
type Role struct {
	IDRole         int      `bson:"idRole" json:"idRole"`
	Name           string   `bson:"name" json:"name"`
	AllowedActions []string `bson:"allowedActions" json:"allowedActions"`
}

// User is the decoded identity carried inside the session token (`id` claim).
// SessionID ties the snapshot to one server-side login instance.
type User struct {
	CPF        string `bson:"cpf" json:"cpf"`
	FullName   string `bson:"fullName" json:"fullName"`
	Email      string `bson:"email" json:"email"`
	IDUnit     int    `bson:"idUnit" json:"idUnit"`
	IDRole     int    `bson:"idRole" json:"idRole"`
	FirstLogin bool   `bson:"firstLogin" json:"firstLogin"`
	SessionID  string `bson:"sessionId" json:"sessionId"`
	Role       Role   `bson:"role" json:"role"`
}

// Profile is a user enriched with the flattened permission list, as returned
// by the profile endpoint and by the session facade.
type Profile struct {
	User
	AllowedActions []string `json:"allowedActions"`
}

// Credentials are the login inputs
type Credentials struct {
	CPF      string `json:"cpf" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Account is the stored user record; PasswordHash is a bcrypt hash and never
// leaves the users package.
type Account struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	CPF          string    `bson:"cpf" json:"cpf"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	IDUnit       int       `bson:"idUnit" json:"idUnit"`
	IDRole       int       `bson:"idRole" json:"idRole"`
	FirstLogin   bool      `bson:"firstLogin" json:"firstLogin"`
	Accepted     bool      `bson:"accepted" json:"accepted"`
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot derives the token-embedded user view for a new session.
func (a *Account) Snapshot(sessionID string) *User {
	return &User{
		CPF:        a.CPF,
		FullName:   a.FullName,
		Email:      a.Email,
		IDUnit:     a.IDUnit,
		IDRole:     a.IDRole,
		FirstLogin: a.FirstLogin,
		SessionID:  sessionID,
		Role:       a.Role,
	}
}
