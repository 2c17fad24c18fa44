package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/opsdesk/internal/shared"
)

// Repository abstracts media persistence.
type Repository interface {
	Create(ctx context.Context, input CreateInput) (*Media, error)
	GetByID(ctx context.Context, id int64) (*Media, error)
	List(ctx context.Context) ([]Media, error)
	SetAnalyzed(ctx context.Context, id int64, analyzed bool) (*Media, error)
	SetResult(ctx context.Context, id int64, result string) (*Media, error)
	SetReason(ctx context.Context, id int64, reason string) (*Media, error)
}

const mediaColumns = `media_id, media_type, content, blob_type, analyzed, result, reason, created_at, updated_at`

// PGRepository is the Postgres implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PGRepository)(nil)

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func scanMedia(row pgx.Row) (*Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.MediaType, &m.Content, &m.BlobType, &m.Analyzed, &m.Result, &m.Reason, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan media: %w", err)
	}
	return &m, nil
}

func (r *PGRepository) Create(ctx context.Context, input CreateInput) (*Media, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO media (media_type, content, blob_type, analyzed, result, reason, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, '', '', NOW(), NOW())
		RETURNING `+mediaColumns,
		input.MediaType, input.Content, input.BlobType,
	)
	return scanMedia(row)
}

func (r *PGRepository) GetByID(ctx context.Context, id int64) (*Media, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media WHERE media_id = $1`, id)
	return scanMedia(row)
}

func (r *PGRepository) List(ctx context.Context) ([]Media, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+mediaColumns+` FROM media ORDER BY media_id`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *PGRepository) SetAnalyzed(ctx context.Context, id int64, analyzed bool) (*Media, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE media SET analyzed = $2, updated_at = NOW()
		WHERE media_id = $1
		RETURNING `+mediaColumns, id, analyzed)
	return scanMedia(row)
}

func (r *PGRepository) SetResult(ctx context.Context, id int64, result string) (*Media, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE media SET result = $2, updated_at = NOW()
		WHERE media_id = $1
		RETURNING `+mediaColumns, id, result)
	return scanMedia(row)
}

func (r *PGRepository) SetReason(ctx context.Context, id int64, reason string) (*Media, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE media SET reason = $2, updated_at = NOW()
		WHERE media_id = $1
		RETURNING `+mediaColumns, id, reason)
	return scanMedia(row)
}
