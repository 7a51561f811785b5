package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
	"github.com/temmy669/imprest-portal-back-up/internal/utils/mapping"
)

type PgxReimbursementRepository struct {
	BaseRepository
}

// newPgxReimbursementRepository creates a new repository for reimbursement data.
func newPgxReimbursementRepository(pool *pgxpool.Pool, lockWait time.Duration) portsrepo.ReimbursementRepositoryWithTx {
	return &PgxReimbursementRepository{BaseRepository{Pool: pool, LockWait: lockWait}}
}

var _ portsrepo.ReimbursementRepositoryWithTx = (*PgxReimbursementRepository)(nil)

const reimbursementColumns = `reimbursement_id, requester_id, store_id, status, internal_control_status, disbursement_status,
	is_draft, total_amount, area_manager_id, area_manager_approved_at, area_manager_declined_at,
	internal_control_id, internal_control_approved_at, internal_control_declined_at,
	treasurer_id, disbursed_at, bank_id, account_id,
	created_at, created_by, last_updated_at, last_updated_by`

const reimbursementItemColumns = `item_id, reimbursement_id, item_name, gl_code, transport_from, transport_to,
	unit_price, quantity, item_total, purchase_request_ref, status, internal_control_status,
	receipt_path, requires_receipt, receipt_validated`

func scanReimbursement(row pgx.Row) (models.Reimbursement, error) {
	var m models.Reimbursement
	err := row.Scan(
		&m.ReimbursementID, &m.RequesterID, &m.StoreID, &m.Status, &m.InternalControlStatus, &m.DisbursementStatus,
		&m.IsDraft, &m.TotalAmount, &m.AreaManagerID, &m.AreaManagerApprovedAt, &m.AreaManagerDeclinedAt,
		&m.InternalControlID, &m.InternalControlApprovedAt, &m.InternalControlDeclinedAt,
		&m.TreasurerID, &m.DisbursedAt, &m.BankID, &m.AccountID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// CreateReimbursement persists the aggregate, its items and its purchase
// request links in one transaction, assigning generated ids back.
func (r *PgxReimbursementRepository) CreateReimbursement(ctx context.Context, reimb *domain.Reimbursement) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	m := mapping.ToModelReimbursement(*reimb)
	err = tx.QueryRow(ctx, `
		INSERT INTO reimbursements (requester_id, store_id, status, internal_control_status, disbursement_status, is_draft, total_amount,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING reimbursement_id`,
		m.RequesterID, m.StoreID, m.Status, m.InternalControlStatus, m.DisbursementStatus, m.IsDraft, m.TotalAmount,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	).Scan(&reimb.ReimbursementID)
	if err != nil {
		return fmt.Errorf("failed to create reimbursement: %w", err)
	}

	for i := range reimb.Items {
		reimb.Items[i].ReimbursementID = reimb.ReimbursementID
		if err := insertReimbursementItem(ctx, tx, &reimb.Items[i]); err != nil {
			return err
		}
	}

	for _, requestID := range reimb.LinkedRequestIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO reimbursement_request_links (reimbursement_id, purchase_request_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			reimb.ReimbursementID, requestID); err != nil {
			return fmt.Errorf("failed to link purchase request %d: %w", requestID, err)
		}
	}
	return r.Commit(ctx, tx)
}

func insertReimbursementItem(ctx context.Context, tx pgx.Tx, item *domain.ReimbursementItem) error {
	m := mapping.ToModelReimbursementItem(*item)
	err := tx.QueryRow(ctx, `
		INSERT INTO reimbursement_items (reimbursement_id, item_name, gl_code, transport_from, transport_to,
			unit_price, quantity, item_total, purchase_request_ref, status, internal_control_status,
			receipt_path, requires_receipt, receipt_validated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING item_id`,
		m.ReimbursementID, m.ItemName, m.GLCode, m.TransportFrom, m.TransportTo,
		m.UnitPrice, m.Quantity, m.ItemTotal, m.PurchaseRequestRef, m.Status, m.InternalControlStatus,
		m.ReceiptPath, m.RequiresReceipt, m.ReceiptValidated,
	).Scan(&item.ItemID)
	if err != nil {
		return fmt.Errorf("failed to create reimbursement item: %w", err)
	}
	return nil
}

// FindReimbursementByID retrieves the aggregate with items, comments and links.
func (r *PgxReimbursementRepository) FindReimbursementByID(ctx context.Context, reimbursementID int64) (*domain.Reimbursement, error) {
	return r.loadReimbursement(ctx, r.Pool, reimbursementID)
}

func (r *PgxReimbursementRepository) loadReimbursement(ctx context.Context, q querier, reimbursementID int64) (*domain.Reimbursement, error) {
	row := q.QueryRow(ctx, `SELECT `+reimbursementColumns+` FROM reimbursements WHERE reimbursement_id = $1`, reimbursementID)
	m, err := scanReimbursement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reimbursement %d: %w", reimbursementID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find reimbursement %d: %w", reimbursementID, err)
	}

	items, err := loadReimbursementItems(ctx, q, []int64{reimbursementID})
	if err != nil {
		return nil, err
	}
	comments, err := loadComments(ctx, q, domain.AggregateReimbursement, reimbursementID)
	if err != nil {
		return nil, err
	}
	links, err := loadRequestLinks(ctx, q, reimbursementID)
	if err != nil {
		return nil, err
	}

	reimb := mapping.ToDomainReimbursement(m, items[reimbursementID], comments, links)
	return &reimb, nil
}

func loadReimbursementItems(ctx context.Context, q querier, reimbursementIDs []int64) (map[int64][]models.ReimbursementItem, error) {
	rows, err := q.Query(ctx, `SELECT `+reimbursementItemColumns+` FROM reimbursement_items WHERE reimbursement_id = ANY($1) ORDER BY item_id`, reimbursementIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load reimbursement items: %w", err)
	}
	defer rows.Close()

	byReimbursement := make(map[int64][]models.ReimbursementItem)
	for rows.Next() {
		var it models.ReimbursementItem
		if err := rows.Scan(&it.ItemID, &it.ReimbursementID, &it.ItemName, &it.GLCode, &it.TransportFrom, &it.TransportTo,
			&it.UnitPrice, &it.Quantity, &it.ItemTotal, &it.PurchaseRequestRef, &it.Status, &it.InternalControlStatus,
			&it.ReceiptPath, &it.RequiresReceipt, &it.ReceiptValidated); err != nil {
			return nil, fmt.Errorf("failed to scan reimbursement item: %w", err)
		}
		byReimbursement[it.ReimbursementID] = append(byReimbursement[it.ReimbursementID], it)
	}
	return byReimbursement, rows.Err()
}

func loadRequestLinks(ctx context.Context, q querier, reimbursementID int64) ([]int64, error) {
	rows, err := q.Query(ctx, `SELECT purchase_request_id FROM reimbursement_request_links WHERE reimbursement_id = $1 ORDER BY purchase_request_id`, reimbursementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request links: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan request link: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListReimbursements retrieves a filtered page newest first, plus the total
// match count and the per-status counts over the filter without the status
// predicates.
func (r *PgxReimbursementRepository) ListReimbursements(ctx context.Context, filter portsrepo.ReimbursementFilter) ([]domain.Reimbursement, int, map[domain.ApprovalStatus]int, error) {
	where, args := buildReimbursementFilter(filter, false)
	countWhere, countArgs := buildReimbursementFilter(filter, true)

	counts := make(map[domain.ApprovalStatus]int)
	countRows, err := r.Pool.Query(ctx, `SELECT status, COUNT(*) FROM reimbursements `+countWhere+` GROUP BY status`, countArgs...)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count reimbursements: %w", err)
	}
	for countRows.Next() {
		var status string
		var n int
		if err := countRows.Scan(&status, &n); err != nil {
			countRows.Close()
			return nil, 0, nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[domain.ApprovalStatus(status)] = n
	}
	countRows.Close()
	if err := countRows.Err(); err != nil {
		return nil, 0, nil, err
	}

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM reimbursements `+where, args...).Scan(&total); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count filtered reimbursements: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	pageArgs := append(append([]any{}, args...), limit, filter.Offset)
	pageQuery := fmt.Sprintf(`SELECT %s FROM reimbursements %s ORDER BY created_at DESC, reimbursement_id DESC LIMIT $%d OFFSET $%d`,
		reimbursementColumns, where, len(args)+1, len(args)+2)
	rows, err := r.Pool.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to list reimbursements: %w", err)
	}
	defer rows.Close()

	var page []models.Reimbursement
	var ids []int64
	for rows.Next() {
		m, err := scanReimbursement(rows)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to scan reimbursement: %w", err)
		}
		page = append(page, m)
		ids = append(ids, m.ReimbursementID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, nil, err
	}

	items := map[int64][]models.ReimbursementItem{}
	if len(ids) > 0 {
		items, err = loadReimbursementItems(ctx, r.Pool, ids)
		if err != nil {
			return nil, 0, nil, err
		}
	}
	result := make([]domain.Reimbursement, len(page))
	for i, m := range page {
		result[i] = mapping.ToDomainReimbursement(m, items[m.ReimbursementID], nil, nil)
	}
	return result, total, counts, nil
}

func buildReimbursementFilter(filter portsrepo.ReimbursementFilter, forCounts bool) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.RequesterID != "" {
		add("requester_id = $%d", filter.RequesterID)
	}
	if len(filter.StoreIDs) > 0 {
		add("store_id = ANY($%d)", filter.StoreIDs)
	}
	if !forCounts && filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if !forCounts && filter.InternalControlStatus != "" {
		add("internal_control_status = $%d", string(filter.InternalControlStatus))
	}
	if !filter.IncludeDrafts {
		clauses = append(clauses, "is_draft = FALSE")
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// SumApprovedTotalByStore totals reimbursements whose Internal Control track
// is approved for the store. Feeds the derived imprest balance.
func (r *PgxReimbursementRepository) SumApprovedTotalByStore(ctx context.Context, storeID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0)
		FROM reimbursements
		WHERE store_id = $1 AND internal_control_status = $2 AND is_draft = FALSE`,
		storeID, string(domain.StatusApproved),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved reimbursements for store %d: %w", storeID, err)
	}
	return total, nil
}

// WithReimbursementLock runs fn against the freshly loaded aggregate under an
// exclusive row lock on the parent row, then persists the mutated aggregate.
func (r *PgxReimbursementRepository) WithReimbursementLock(ctx context.Context, reimbursementID int64, fn func(reimb *domain.Reimbursement) error) (*domain.Reimbursement, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := r.acquireAggregateLock(ctx, tx, `SELECT reimbursement_id FROM reimbursements WHERE reimbursement_id = $1 FOR UPDATE`, reimbursementID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("reimbursement %d: %w", reimbursementID, apperrors.ErrNotFound)
		}
		return nil, err
	}

	reimb, err := r.loadReimbursement(ctx, tx, reimbursementID)
	if err != nil {
		return nil, err
	}
	if err := fn(reimb); err != nil {
		return nil, err
	}
	if err := r.persistReimbursement(ctx, tx, reimb); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return reimb, nil
}

func (r *PgxReimbursementRepository) persistReimbursement(ctx context.Context, tx pgx.Tx, reimb *domain.Reimbursement) error {
	m := mapping.ToModelReimbursement(*reimb)
	_, err := tx.Exec(ctx, `
		UPDATE reimbursements
		SET status = $2, internal_control_status = $3, disbursement_status = $4, is_draft = $5, total_amount = $6,
			area_manager_id = $7, area_manager_approved_at = $8, area_manager_declined_at = $9,
			internal_control_id = $10, internal_control_approved_at = $11, internal_control_declined_at = $12,
			treasurer_id = $13, disbursed_at = $14, bank_id = $15, account_id = $16,
			last_updated_at = $17, last_updated_by = $18
		WHERE reimbursement_id = $1`,
		m.ReimbursementID, m.Status, m.InternalControlStatus, m.DisbursementStatus, m.IsDraft, m.TotalAmount,
		m.AreaManagerID, m.AreaManagerApprovedAt, m.AreaManagerDeclinedAt,
		m.InternalControlID, m.InternalControlApprovedAt, m.InternalControlDeclinedAt,
		m.TreasurerID, m.DisbursedAt, m.BankID, m.AccountID,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update reimbursement %d: %w", m.ReimbursementID, err)
	}

	for i := range reimb.Items {
		reimb.Items[i].ReimbursementID = reimb.ReimbursementID
		if reimb.Items[i].ItemID == 0 {
			if err := insertReimbursementItem(ctx, tx, &reimb.Items[i]); err != nil {
				return err
			}
			continue
		}
		item := mapping.ToModelReimbursementItem(reimb.Items[i])
		_, err = tx.Exec(ctx, `
			UPDATE reimbursement_items
			SET item_name = $2, gl_code = $3, transport_from = $4, transport_to = $5,
				unit_price = $6, quantity = $7, item_total = $8, purchase_request_ref = $9,
				status = $10, internal_control_status = $11,
				receipt_path = $12, requires_receipt = $13, receipt_validated = $14
			WHERE item_id = $1`,
			item.ItemID, item.ItemName, item.GLCode, item.TransportFrom, item.TransportTo,
			item.UnitPrice, item.Quantity, item.ItemTotal, item.PurchaseRequestRef,
			item.Status, item.InternalControlStatus,
			item.ReceiptPath, item.RequiresReceipt, item.ReceiptValidated,
		)
		if err != nil {
			return fmt.Errorf("failed to persist reimbursement item: %w", err)
		}
	}

	for _, requestID := range reimb.LinkedRequestIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO reimbursement_request_links (reimbursement_id, purchase_request_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			reimb.ReimbursementID, requestID); err != nil {
			return fmt.Errorf("failed to link purchase request %d: %w", requestID, err)
		}
	}

	return persistNewComments(ctx, tx, domain.AggregateReimbursement, reimb.ReimbursementID, reimb.Comments)
}
