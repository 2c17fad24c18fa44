package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/opsdesk/internal/shared"
)

// Repository defines persistence operations for tickets.
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*Ticket, error)
	GetByID(ctx context.Context, id int64) (*Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Ticket, error)
	Assign(ctx context.Context, id, userID int64) (*Ticket, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*Ticket, error)
	ListFiltered(ctx context.Context, filter Filter) ([]Ticket, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const ticketColumns = `ticket_id, created_by, assigned_to, title, description, status, due_date, location, media_type, media_id, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	var assignedTo, mediaID pgtype.Int8
	err := row.Scan(&t.ID, &t.CreatedBy, &assignedTo, &t.Title, &t.Description,
		&t.Status, &t.DueDate, &t.Location, &t.MediaType, &mediaID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if assignedTo.Valid {
		t.AssignedTo = &assignedTo.Int64
	}
	if mediaID.Valid {
		t.MediaID = &mediaID.Int64
	}
	return &t, nil
}

// Create inserts a new ticket in OPEN status.
func (r *PGRepository) Create(ctx context.Context, input CreateInput) (*Ticket, error) {
	var assignedTo, mediaID pgtype.Int8
	if input.AssignedTo != nil {
		assignedTo = pgtype.Int8{Int64: *input.AssignedTo, Valid: true}
	}
	if input.MediaID != nil {
		mediaID = pgtype.Int8{Int64: *input.MediaID, Valid: true}
	}

	query := `
		INSERT INTO tickets (created_by, assigned_to, title, description, status, due_date, location, media_type, media_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'OPEN', $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + ticketColumns

	return scanTicket(r.pool.QueryRow(ctx, query,
		input.CreatedBy, assignedTo, input.Title, input.Description,
		input.DueDate, input.Location, input.MediaType, mediaID))
}

// GetByID fetches one ticket.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id = $1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus applies an unconditional status transition.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, status Status) (*Ticket, error) {
	query := `UPDATE tickets SET status = $2, updated_at = NOW() WHERE ticket_id = $1 RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query, id, status))
}

// Assign sets the ticket's assignee.
func (r *PGRepository) Assign(ctx context.Context, id, userID int64) (*Ticket, error) {
	query := `UPDATE tickets SET assigned_to = $2, updated_at = NOW() WHERE ticket_id = $1 RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query, id, userID))
}

// Update applies a partial field update.
func (r *PGRepository) Update(ctx context.Context, id int64, input UpdateInput) (*Ticket, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if input.Title != nil {
		add("title", *input.Title)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}
	if input.DueDate != nil {
		add("due_date", *input.DueDate)
	}
	if input.Location != nil {
		add("location", *input.Location)
	}
	if input.MediaType != nil {
		add("media_type", *input.MediaType)
	}
	if input.MediaID != nil {
		add("media_id", *input.MediaID)
	}

	query := `UPDATE tickets SET ` + strings.Join(sets, ", ") + ` WHERE ticket_id = $1 RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query, args...))
}

// ListFiltered returns tickets matching every supplied filter.
func (r *PGRepository) ListFiltered(ctx context.Context, filter Filter) ([]Ticket, error) {
	args := []any{}
	conds := []string{"1=1"}

	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.CreatedBy != nil {
		add("created_by = $%d", *filter.CreatedBy)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.DueDate != nil {
		add("due_date = $%d", *filter.DueDate)
	}
	if filter.Location != "" {
		add("location = $%d", filter.Location)
	}
	if filter.MediaType != "" {
		add("media_type = $%d", filter.MediaType)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY ticket_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
