package users

import (
	"context"
)

// Service handles directory reads.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetUser returns one user or shared.ErrNotFound.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns users matching the filter.
func (s *Service) ListUsers(ctx context.Context, filter Filter) ([]User, error) {
	return s.repo.ListFiltered(ctx, filter)
}
