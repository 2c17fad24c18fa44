package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/shared"
)

// Service wraps credential-store business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates name/password credentials. An unknown account and a
// wrong password are indistinguishable to the caller so accounts cannot be
// enumerated through the login endpoint.
func (s *Service) Authenticate(ctx context.Context, name, password string) (*Account, error) {
	account, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return account, nil
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, password string, role identity.Role) (*Account, error) {
	if existing, err := s.repo.FindByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("account %q: %w", name, shared.ErrAlreadyExists)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.Create(ctx, name, string(hashed), role)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, fmt.Errorf("account %q: %w", name, err)
		}
		return nil, err
	}
	return account, nil
}
