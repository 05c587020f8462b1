package users

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/fga-eps-mds/capju-session-go/internal/models"
)

// ErrInvalidCredentials covers both unknown cpf and wrong password, so the
// login response does not leak which one failed.
var ErrInvalidCredentials = errors.New("credenciais inválidas")

// ErrNotAccepted is returned for accounts still waiting for admin approval.
var ErrNotAccepted = errors.New("usuário aguardando aprovação")

// Service encapsulates user-account business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Authenticate verifies the credentials and returns the stored account.
func (s *Service) Authenticate(ctx context.Context, creds models.Credentials) (*models.Account, error) {
	a, err := s.repo.GetByCPF(ctx, creds.CPF)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !a.Accepted {
		return nil, ErrNotAccepted
	}
	return a, nil
}

// GetByCPF looks up an account without checking credentials.
func (s *Service) GetByCPF(ctx context.Context, cpf string) (*models.Account, error) {
	return s.repo.GetByCPF(ctx, cpf)
}

// HashPassword produces the bcrypt hash stored on an account.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
