package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
	"github.com/temmy669/imprest-portal-back-up/internal/utils/mapping"
)

type PgxLimitRepository struct {
	pool *pgxpool.Pool
}

// newPgxLimitRepository creates a new repository for the threshold singleton.
func newPgxLimitRepository(pool *pgxpool.Pool) portsrepo.LimitConfigRepository {
	return &PgxLimitRepository{pool: pool}
}

var _ portsrepo.LimitConfigRepository = (*PgxLimitRepository)(nil)

// GetLimit reads the singleton row. ErrNotFound signals the caller to fall
// back to the documented default.
func (r *PgxLimitRepository) GetLimit(ctx context.Context) (*domain.LimitConfig, error) {
	var m models.LimitConfig
	err := r.pool.QueryRow(ctx, `SELECT threshold, updated_by, updated_at FROM limit_config WHERE id = 1`).
		Scan(&m.Limit, &m.UpdatedBy, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("limit config: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read limit config: %w", err)
	}
	cfg := mapping.ToDomainLimitConfig(m)
	return &cfg, nil
}

// UpsertLimit writes the singleton row.
func (r *PgxLimitRepository) UpsertLimit(ctx context.Context, cfg domain.LimitConfig) error {
	m := mapping.ToModelLimitConfig(cfg)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO limit_config (id, threshold, updated_by, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET threshold = EXCLUDED.threshold, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`,
		m.Limit, m.UpdatedBy, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert limit config: %w", err)
	}
	return nil
}
