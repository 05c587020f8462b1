package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logout initiators accepted by the session endpoints.
const (
	InitiatorUserRequested = "userRequested"
	InitiatorInactivity    = "timeoutDueToInactivity"
	InitiatorTokenExpired  = "tokenExpired"
	InitiatorRemoteEnd     = "sessionEndedRemotely"
	InitiatorAdmin         = "forcedByAdmin"
)

// Status is the answer to a session-status probe.
type Status struct {
	Active  bool   `json:"active"`
	Message string `json:"message,omitempty"`
}

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// CreateSession registers a new active session for the user and returns its id.
func (s *Service) CreateSession(ctx context.Context, cpf string, ttl time.Duration) (string, error) {
	sess := &Session{
		SessionID: uuid.NewString(),
		CPF:       cpf,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return sess.SessionID, nil
}

// CheckStatus reports whether the session is still active. Missing and
// expired sessions report inactive; the message tells the user why.
func (s *Service) CheckStatus(ctx context.Context, sessionID string) (*Status, error) {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || time.Now().UTC().After(sess.ExpiresAt) {
		return &Status{Active: false, Message: "Sessão encerrada"}, nil
	}
	if !sess.Active {
		msg := "Sessão encerrada"
		if sess.LogoutInitiator == InitiatorAdmin {
			msg = "Sessão encerrada pelo administrador"
		}
		return &Status{Active: false, Message: msg}, nil
	}
	return &Status{Active: true}, nil
}

// End deactivates the session, recording who initiated the logout.
// Ending an already-ended or unknown session is not an error.
func (s *Service) End(ctx context.Context, sessionID, initiator string) error {
	return s.repo.Deactivate(ctx, sessionID, initiator)
}
