package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
)

// Postgres SQLSTATE codes the workflow repositories translate into domain errors.
const (
	pgCodeLockNotAvailable = "55P03"
	pgCodeUniqueViolation  = "23505"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool

	// LockWait bounds how long an aggregate lock acquisition may block before
	// the operation fails with apperrors.ErrConcurrency.
	LockWait time.Duration
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// acquireAggregateLock takes an exclusive row lock on the aggregate's parent
// row with a bounded wait. SET LOCAL scopes the timeout to this transaction;
// an elapsed wait surfaces as ErrConcurrency so callers can retry.
func (r *BaseRepository) acquireAggregateLock(ctx context.Context, tx pgx.Tx, lockQuery string, id int64) error {
	wait := r.LockWait
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", wait.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	var locked int64
	err := tx.QueryRow(ctx, lockQuery, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeLockNotAvailable {
			return fmt.Errorf("%w: aggregate %d is locked by a concurrent operation", apperrors.ErrConcurrency, id)
		}
		return fmt.Errorf("failed to lock aggregate %d: %w", id, err)
	}
	return nil
}
