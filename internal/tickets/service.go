package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opsdesk/opsdesk/internal/existence"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/internal/shared"
)

const userResource = "users"

// retryBackoff is the single capped retry applied when an existence check
// comes back indeterminate during assignment.
const retryBackoff = 200 * time.Millisecond

// Service owns the ticket lifecycle: creation, status transition and
// assignment, gated by the existence oracle for referential validity.
type Service struct {
	repo    Repository
	users   existence.Checker
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService constructs a Service.
func NewService(repo Repository, users existence.Checker, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, users: users, logger: logger, metrics: metrics}
}

func (s *Service) checkUser(ctx context.Context, id int64) (existence.Outcome, error) {
	outcome, err := s.users.Exists(ctx, userResource, id)
	s.metrics.RecordExistenceCheck(userResource, outcome.String())
	return outcome, err
}

// Create validates the creator against the existence oracle and persists the
// ticket in OPEN status. A definite absence of the creator fails with
// ErrUserNotFound; an indeterminate check fails with ErrDependencyUnavailable
// and nothing is persisted. The assignee check is permissive: anything but a
// confirmed existence drops the assignment rather than the whole ticket.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Ticket, error) {
	var createdByOutcome, assignedToOutcome existence.Outcome
	var createdByErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		createdByOutcome, createdByErr = s.checkUser(gctx, input.CreatedBy)
		return nil
	})
	if input.AssignedTo != nil {
		assignee := *input.AssignedTo
		g.Go(func() error {
			assignedToOutcome, _ = s.checkUser(gctx, assignee)
			return nil
		})
	}
	_ = g.Wait()

	switch createdByOutcome {
	case existence.Exists:
	case existence.Absent:
		s.metrics.RecordError("tickets.create")
		return nil, fmt.Errorf("creator %d: %w", input.CreatedBy, shared.ErrUserNotFound)
	default:
		s.metrics.RecordError("tickets.create")
		s.logger.Warn("creator existence check indeterminate",
			slog.Int64("userId", input.CreatedBy), slog.Any("error", createdByErr))
		return nil, fmt.Errorf("creator %d: %w", input.CreatedBy, shared.ErrDependencyUnavailable)
	}

	if input.AssignedTo != nil && assignedToOutcome != existence.Exists {
		// Losing an assignment is less harmful than losing the ticket.
		s.logger.Warn("dropping unresolved assignment",
			slog.Int64("userId", *input.AssignedTo),
			slog.String("outcome", assignedToOutcome.String()))
		input.AssignedTo = nil
	}

	return s.repo.Create(ctx, input)
}

// UpdateStatus applies an unconditional transition; any status may follow
// any other.
func (s *Service) UpdateStatus(ctx context.Context, ticketID int64, status Status) (*Ticket, error) {
	return s.repo.UpdateStatus(ctx, ticketID, status)
}

// Assign validates the assignee strictly: a definite absence fails with
// ErrUserNotFound, an indeterminate check is retried once and then fails
// with ErrDependencyUnavailable without touching the ticket.
func (s *Service) Assign(ctx context.Context, ticketID, userID int64) (*Ticket, error) {
	if _, err := s.repo.GetByID(ctx, ticketID); err != nil {
		return nil, err
	}

	outcome, err := s.checkUser(ctx, userID)
	if outcome == existence.Indeterminate {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
		outcome, err = s.checkUser(ctx, userID)
	}

	switch outcome {
	case existence.Exists:
		return s.repo.Assign(ctx, ticketID, userID)
	case existence.Absent:
		s.metrics.RecordError("tickets.assign")
		return nil, fmt.Errorf("assignee %d: %w", userID, shared.ErrUserNotFound)
	default:
		s.metrics.RecordError("tickets.assign")
		s.logger.Warn("assignee existence check indeterminate",
			slog.Int64("userId", userID), slog.Any("error", err))
		return nil, fmt.Errorf("assignee %d: %w", userID, shared.ErrDependencyUnavailable)
	}
}

// Update applies a partial field update.
func (s *Service) Update(ctx context.Context, ticketID int64, input UpdateInput) (*Ticket, error) {
	return s.repo.Update(ctx, ticketID, input)
}

// GetTicket returns one ticket or shared.ErrNotFound.
func (s *Service) GetTicket(ctx context.Context, ticketID int64) (*Ticket, error) {
	return s.repo.GetByID(ctx, ticketID)
}

// GetFiltered returns tickets matching every supplied filter.
func (s *Service) GetFiltered(ctx context.Context, filter Filter) ([]Ticket, error) {
	return s.repo.ListFiltered(ctx, filter)
}
