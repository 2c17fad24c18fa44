package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/shared"
)

// Repository defines persistence operations for the credential store.
type Repository interface {
	FindByName(ctx context.Context, name string) (*Account, error)
	Create(ctx context.Context, name, passwordHash string, role identity.Role) (*Account, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByName fetches an account by its unique name.
func (r *PGRepository) FindByName(ctx context.Context, name string) (*Account, error) {
	const query = `SELECT user_id, name, password_hash, role, created_at, updated_at FROM accounts WHERE name = $1`
	var acc Account
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&acc.ID, &acc.Name, &acc.PasswordHash, &acc.Role, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// Create inserts a new account. A unique-violation on the name maps to
// ErrAlreadyExists.
func (r *PGRepository) Create(ctx context.Context, name, passwordHash string, role identity.Role) (*Account, error) {
	const query = `
		INSERT INTO accounts (name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING user_id, created_at, updated_at`
	acc := Account{Name: name, PasswordHash: passwordHash, Role: role}
	err := r.pool.QueryRow(ctx, query, name, passwordHash, role).Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrAlreadyExists
		}
		return nil, err
	}
	return &acc, nil
}

var _ Repository = (*PGRepository)(nil)
