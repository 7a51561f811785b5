package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
	"github.com/temmy669/imprest-portal-back-up/internal/utils/mapping"
)

type PgxStoreRepository struct {
	pool *pgxpool.Pool
}

// newPgxStoreRepository creates a new repository for store data.
func newPgxStoreRepository(pool *pgxpool.Pool) portsrepo.StoreRepositoryFacade {
	return &PgxStoreRepository{pool: pool}
}

var _ portsrepo.StoreRepositoryFacade = (*PgxStoreRepository)(nil)

const storeColumns = `store_id, name, code, region, budget, restaurant_manager_id, area_manager_id, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanStore(row pgx.Row) (models.Store, error) {
	var m models.Store
	err := row.Scan(
		&m.StoreID, &m.Name, &m.Code, &m.Region, &m.Budget, &m.RestaurantManager, &m.AreaManager, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// CreateStore inserts a new store and assigns the generated id.
func (r *PgxStoreRepository) CreateStore(ctx context.Context, store *domain.Store) error {
	m := mapping.ToModelStore(*store)
	err := r.pool.QueryRow(ctx, `
		INSERT INTO stores (name, code, region, budget, restaurant_manager_id, area_manager_id, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING store_id`,
		m.Name, m.Code, m.Region, m.Budget, m.RestaurantManager, m.AreaManager, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	).Scan(&store.StoreID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
			return fmt.Errorf("%w: store with code %s already exists", apperrors.ErrDuplicate, m.Code)
		}
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// UpdateStore updates store attributes.
func (r *PgxStoreRepository) UpdateStore(ctx context.Context, store *domain.Store) error {
	m := mapping.ToModelStore(*store)
	tag, err := r.pool.Exec(ctx, `
		UPDATE stores
		SET name = $2, code = $3, region = $4, budget = $5, restaurant_manager_id = $6, area_manager_id = $7,
			is_active = $8, last_updated_at = $9, last_updated_by = $10
		WHERE store_id = $1`,
		m.StoreID, m.Name, m.Code, m.Region, m.Budget, m.RestaurantManager, m.AreaManager,
		m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update store %d: %w", m.StoreID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store %d: %w", m.StoreID, apperrors.ErrNotFound)
	}
	return nil
}

// RecordBudgetChange appends a budget audit entry.
func (r *PgxStoreRepository) RecordBudgetChange(ctx context.Context, change domain.BudgetChange) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO store_budget_history (store_id, previous_budget, new_budget, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		change.StoreID, change.PreviousBudget, change.NewBudget, change.ChangedBy, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record budget change for store %d: %w", change.StoreID, err)
	}
	return nil
}

// FindStoreByID retrieves a single store.
func (r *PgxStoreRepository) FindStoreByID(ctx context.Context, storeID int64) (*domain.Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE store_id = $1`, storeID)
	m, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("store %d: %w", storeID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find store %d: %w", storeID, err)
	}
	store := mapping.ToDomainStore(m)
	return &store, nil
}

// ListStores retrieves all stores ordered by name.
func (r *PgxStoreRepository) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		m, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, mapping.ToDomainStore(m))
	}
	return stores, rows.Err()
}

// ListBudgetHistory retrieves the audit trail of budget changes, newest first.
func (r *PgxStoreRepository) ListBudgetHistory(ctx context.Context, storeID int64) ([]domain.BudgetChange, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT store_id, previous_budget, new_budget, changed_by
		FROM store_budget_history
		WHERE store_id = $1
		ORDER BY changed_at DESC`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget history for store %d: %w", storeID, err)
	}
	defer rows.Close()

	var changes []domain.BudgetChange
	for rows.Next() {
		var c domain.BudgetChange
		if err := rows.Scan(&c.StoreID, &c.PreviousBudget, &c.NewBudget, &c.ChangedBy); err != nil {
			return nil, fmt.Errorf("failed to scan budget change: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
