package tickets

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/internal/existence"
	"github.com/opsdesk/opsdesk/internal/shared"
)

type memoryTicketRepo struct {
	tickets map[int64]*Ticket
	nextID  int64
}

func newMemoryTicketRepo() *memoryTicketRepo {
	return &memoryTicketRepo{tickets: make(map[int64]*Ticket)}
}

func (r *memoryTicketRepo) Create(ctx context.Context, input CreateInput) (*Ticket, error) {
	r.nextID++
	now := time.Now()
	t := &Ticket{
		ID:          r.nextID,
		CreatedBy:   input.CreatedBy,
		AssignedTo:  input.AssignedTo,
		Title:       input.Title,
		Description: input.Description,
		Status:      StatusOpen,
		DueDate:     input.DueDate,
		Location:    input.Location,
		MediaType:   input.MediaType,
		MediaID:     input.MediaID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.tickets[t.ID] = t
	return t, nil
}

func (r *memoryTicketRepo) GetByID(ctx context.Context, id int64) (*Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *memoryTicketRepo) UpdateStatus(ctx context.Context, id int64, status Status) (*Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (r *memoryTicketRepo) Assign(ctx context.Context, id, userID int64) (*Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	t.AssignedTo = &userID
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (r *memoryTicketRepo) Update(ctx context.Context, id int64, input UpdateInput) (*Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.DueDate != nil {
		t.DueDate = *input.DueDate
	}
	if input.Location != nil {
		t.Location = *input.Location
	}
	if input.MediaType != nil {
		t.MediaType = *input.MediaType
	}
	if input.MediaID != nil {
		t.MediaID = input.MediaID
	}
	t.UpdatedAt = time.Now()
	copied := *t
	return &copied, nil
}

func (r *memoryTicketRepo) ListFiltered(ctx context.Context, filter Filter) ([]Ticket, error) {
	var out []Ticket
	for _, t := range r.tickets {
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.DueDate != nil && !t.DueDate.Equal(*filter.DueDate) {
			continue
		}
		if filter.Location != "" && t.Location != filter.Location {
			continue
		}
		if filter.MediaType != "" && t.MediaType != filter.MediaType {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

var _ Repository = (*memoryTicketRepo)(nil)

// fakeChecker maps user ids to scripted outcomes; unknown ids are Absent.
// Create checks creator and assignee from separate goroutines, so the call
// counter is mutex-guarded.
type fakeChecker struct {
	mu       sync.Mutex
	outcomes map[int64]existence.Outcome
	calls    int
}

func (f *fakeChecker) Exists(ctx context.Context, kind string, id int64) (existence.Outcome, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	outcome, ok := f.outcomes[id]
	if !ok {
		return existence.Absent, nil
	}
	if outcome == existence.Indeterminate {
		return existence.Indeterminate, fmt.Errorf("existence check %s/%d: connection refused", kind, id)
	}
	return outcome, nil
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newLifecycle(checker existence.Checker) (*Service, *memoryTicketRepo) {
	repo := newMemoryTicketRepo()
	return NewService(repo, checker, nil, nil), repo
}

func validInput(createdBy int64) CreateInput {
	return CreateInput{
		CreatedBy:   createdBy,
		Title:       "Broken radiator",
		Description: "Radiator in room 012 leaks",
		DueDate:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Location:    "012",
		MediaType:   MediaPhoto,
	}
}

func TestCreatePersistsOpenTicket(t *testing.T) {
	svc, repo := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{7: existence.Exists}})

	ticket, err := svc.Create(context.Background(), validInput(7))
	require.NoError(t, err)
	require.Equal(t, StatusOpen, ticket.Status)
	require.Len(t, repo.tickets, 1)
}

func TestCreateAbsentCreatorFailsWithoutSideEffects(t *testing.T) {
	svc, repo := newLifecycle(&fakeChecker{})

	_, err := svc.Create(context.Background(), validInput(999))
	require.ErrorIs(t, err, shared.ErrUserNotFound)
	require.Empty(t, repo.tickets, "no ticket may be persisted when the creator is absent")
}

func TestCreateIndeterminateCreatorFailsDistinctly(t *testing.T) {
	svc, repo := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{7: existence.Indeterminate}})

	_, err := svc.Create(context.Background(), validInput(7))
	require.ErrorIs(t, err, shared.ErrDependencyUnavailable)
	require.NotErrorIs(t, err, shared.ErrUserNotFound,
		"an indeterminate check must not be coerced into a definite absence")
	require.Empty(t, repo.tickets)
}

func TestCreateKeepsValidAssignment(t *testing.T) {
	checker := &fakeChecker{outcomes: map[int64]existence.Outcome{
		7:  existence.Exists,
		42: existence.Exists,
	}}
	svc, _ := newLifecycle(checker)

	input := validInput(7)
	assignee := int64(42)
	input.AssignedTo = &assignee

	ticket, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.NotNil(t, ticket.AssignedTo)
	require.Equal(t, int64(42), *ticket.AssignedTo)
	require.Equal(t, 2, checker.callCount(), "one check per referenced user")
}

func TestCreateDropsUnresolvedAssignment(t *testing.T) {
	for name, outcome := range map[string]existence.Outcome{
		"absent":        existence.Absent,
		"indeterminate": existence.Indeterminate,
	} {
		t.Run(name, func(t *testing.T) {
			svc, _ := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{
				7:  existence.Exists,
				42: outcome,
			}})

			input := validInput(7)
			assignee := int64(42)
			input.AssignedTo = &assignee

			ticket, err := svc.Create(context.Background(), input)
			require.NoError(t, err, "an unresolved assignment must not fail creation")
			require.Nil(t, ticket.AssignedTo)
		})
	}
}

func TestStatusTransitionsAreUnordered(t *testing.T) {
	svc, _ := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{7: existence.Exists}})
	ticket, err := svc.Create(context.Background(), validInput(7))
	require.NoError(t, err)

	forward, err := svc.UpdateStatus(context.Background(), ticket.ID, StatusFinished)
	require.NoError(t, err)
	require.Equal(t, StatusFinished, forward.Status)

	backward, err := svc.UpdateStatus(context.Background(), ticket.ID, StatusOpen)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, backward.Status)
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	svc, _ := newLifecycle(&fakeChecker{})

	_, err := svc.UpdateStatus(context.Background(), 100, StatusClosed)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssignCommitsOnlyOnConfirmedExistence(t *testing.T) {
	svc, _ := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{
		7:  existence.Exists,
		42: existence.Exists,
	}})
	ticket, err := svc.Create(context.Background(), validInput(7))
	require.NoError(t, err)

	assigned, err := svc.Assign(context.Background(), ticket.ID, 42)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	require.Equal(t, int64(42), *assigned.AssignedTo)
}

func TestAssignAbsentUser(t *testing.T) {
	svc, _ := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{7: existence.Exists}})
	ticket, err := svc.Create(context.Background(), validInput(7))
	require.NoError(t, err)

	_, err = svc.Assign(context.Background(), ticket.ID, 999)
	require.ErrorIs(t, err, shared.ErrUserNotFound)
}

func TestAssignIndeterminateLeavesTicketUnchanged(t *testing.T) {
	checker := &fakeChecker{outcomes: map[int64]existence.Outcome{
		7:  existence.Exists,
		42: existence.Indeterminate,
	}}
	svc, repo := newLifecycle(checker)
	ticket, err := svc.Create(context.Background(), validInput(7))
	require.NoError(t, err)

	callsBefore := checker.callCount()
	_, err = svc.Assign(context.Background(), ticket.ID, 42)
	require.ErrorIs(t, err, shared.ErrDependencyUnavailable)
	require.Equal(t, 2, checker.callCount()-callsBefore, "exactly one capped retry")

	stored, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Nil(t, stored.AssignedTo, "assignedTo must remain unchanged on an indeterminate check")
}

func TestAssignUnknownTicket(t *testing.T) {
	svc, _ := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{42: existence.Exists}})

	_, err := svc.Assign(context.Background(), 100, 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetFilteredIsConjunctive(t *testing.T) {
	svc, _ := newLifecycle(&fakeChecker{outcomes: map[int64]existence.Outcome{
		7: existence.Exists,
		8: existence.Exists,
	}})

	first := validInput(7)
	first.Location = "012"
	second := validInput(8)
	second.Location = "012"
	third := validInput(7)
	third.Location = "117"

	for _, input := range []CreateInput{first, second, third} {
		_, err := svc.Create(context.Background(), input)
		require.NoError(t, err)
	}

	createdBy := int64(7)
	got, err := svc.GetFiltered(context.Background(), Filter{CreatedBy: &createdBy, Location: "012"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "012", got[0].Location)
	require.Equal(t, int64(7), got[0].CreatedBy)

	all, err := svc.GetFiltered(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3, "an absent filter matches everything")
}

func TestParseStatusAndMediaType(t *testing.T) {
	status, err := ParseStatus("in_progress")
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, status)

	_, err = ParseStatus("DONE")
	require.Error(t, err)

	mt, err := ParseMediaType("photo")
	require.NoError(t, err)
	require.Equal(t, MediaPhoto, mt)

	_, err = ParseMediaType("hologram")
	require.Error(t, err)
}
