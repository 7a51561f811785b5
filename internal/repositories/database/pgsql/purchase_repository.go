package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the loaders can run
// inside or outside the aggregate lock.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgxPurchaseRequestRepository struct {
	BaseRepository
}

// newPgxPurchaseRequestRepository creates a new repository for purchase request data.
func newPgxPurchaseRequestRepository(pool *pgxpool.Pool, lockWait time.Duration) portsrepo.PurchaseRequestRepositoryWithTx {
	return &PgxPurchaseRequestRepository{BaseRepository{Pool: pool, LockWait: lockWait}}
}

var _ portsrepo.PurchaseRequestRepositoryWithTx = (*PgxPurchaseRequestRepository)(nil)

const purchaseRequestColumns = `request_id, requester_id, store_id, status, total_amount, voucher_id,
	area_manager_id, area_manager_approved_at, area_manager_declined_at,
	created_at, created_by, last_updated_at, last_updated_by`

const purchaseItemColumns = `item_id, request_id, gl_code, expense_item, unit_price, quantity, total_price, status, receipt_validated`

func scanPurchaseRequest(row pgx.Row) (models.PurchaseRequest, error) {
	var m models.PurchaseRequest
	err := row.Scan(
		&m.RequestID, &m.RequesterID, &m.StoreID, &m.Status, &m.TotalAmount, &m.VoucherID,
		&m.AreaManagerID, &m.AreaManagerApprovedAt, &m.AreaManagerDeclinedAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// CreateRequest persists the aggregate and assigns the generated ids back onto
// the domain object.
func (r *PgxPurchaseRequestRepository) CreateRequest(ctx context.Context, pr *domain.PurchaseRequest) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	m := mapping.ToModelPurchaseRequest(*pr)
	err = tx.QueryRow(ctx, `
		INSERT INTO purchase_requests (requester_id, store_id, status, total_amount, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING request_id`,
		m.RequesterID, m.StoreID, m.Status, m.TotalAmount,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	).Scan(&pr.RequestID)
	if err != nil {
		return fmt.Errorf("failed to create purchase request: %w", err)
	}

	for i := range pr.Items {
		pr.Items[i].RequestID = pr.RequestID
		item := mapping.ToModelPurchaseItem(pr.Items[i])
		err = tx.QueryRow(ctx, `
			INSERT INTO purchase_request_items (request_id, gl_code, expense_item, unit_price, quantity, total_price, status, receipt_validated)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING item_id`,
			item.RequestID, item.GLCode, item.ExpenseItem, item.UnitPrice,
			item.Quantity, item.TotalPrice, item.Status, item.ReceiptValidated,
		).Scan(&pr.Items[i].ItemID)
		if err != nil {
			return fmt.Errorf("failed to create purchase request item: %w", err)
		}
	}
	return r.Commit(ctx, tx)
}

// FindRequestByID retrieves the aggregate with items and comments.
func (r *PgxPurchaseRequestRepository) FindRequestByID(ctx context.Context, requestID int64) (*domain.PurchaseRequest, error) {
	return r.loadRequest(ctx, r.Pool, requestID)
}

func (r *PgxPurchaseRequestRepository) loadRequest(ctx context.Context, q querier, requestID int64) (*domain.PurchaseRequest, error) {
	row := q.QueryRow(ctx, `SELECT `+purchaseRequestColumns+` FROM purchase_requests WHERE request_id = $1`, requestID)
	m, err := scanPurchaseRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase request %d: %w", requestID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find purchase request %d: %w", requestID, err)
	}

	items, err := r.loadItems(ctx, q, []int64{requestID})
	if err != nil {
		return nil, err
	}
	comments, err := loadComments(ctx, q, domain.AggregatePurchaseRequest, requestID)
	if err != nil {
		return nil, err
	}

	pr := mapping.ToDomainPurchaseRequest(m, items[requestID], comments)
	return &pr, nil
}

func (r *PgxPurchaseRequestRepository) loadItems(ctx context.Context, q querier, requestIDs []int64) (map[int64][]models.PurchaseRequestItem, error) {
	rows, err := q.Query(ctx, `SELECT `+purchaseItemColumns+` FROM purchase_request_items WHERE request_id = ANY($1) ORDER BY item_id`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase request items: %w", err)
	}
	defer rows.Close()

	byRequest := make(map[int64][]models.PurchaseRequestItem)
	for rows.Next() {
		var it models.PurchaseRequestItem
		if err := rows.Scan(&it.ItemID, &it.RequestID, &it.GLCode, &it.ExpenseItem, &it.UnitPrice, &it.Quantity, &it.TotalPrice, &it.Status, &it.ReceiptValidated); err != nil {
			return nil, fmt.Errorf("failed to scan purchase request item: %w", err)
		}
		byRequest[it.RequestID] = append(byRequest[it.RequestID], it)
	}
	return byRequest, rows.Err()
}

func loadComments(ctx context.Context, q querier, aggregateType domain.AggregateType, aggregateID int64) ([]models.WorkflowComment, error) {
	rows, err := q.Query(ctx, `
		SELECT comment_id, aggregate_type, aggregate_id, author_id, author_role, text, system_generated, created_at
		FROM workflow_comments
		WHERE aggregate_type = $1 AND aggregate_id = $2
		ORDER BY comment_id`, string(aggregateType), aggregateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	defer rows.Close()

	var comments []models.WorkflowComment
	for rows.Next() {
		var c models.WorkflowComment
		if err := rows.Scan(&c.CommentID, &c.AggregateType, &c.AggregateID, &c.AuthorID, &c.AuthorRole, &c.Text, &c.SystemGenerated, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// FindRequestsByIDs retrieves multiple requests with items, comments omitted.
func (r *PgxPurchaseRequestRepository) FindRequestsByIDs(ctx context.Context, requestIDs []int64) ([]domain.PurchaseRequest, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+purchaseRequestColumns+` FROM purchase_requests WHERE request_id = ANY($1) ORDER BY request_id`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase requests: %w", err)
	}
	defer rows.Close()

	var modelsRows []models.PurchaseRequest
	for rows.Next() {
		m, err := scanPurchaseRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase request: %w", err)
		}
		modelsRows = append(modelsRows, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, r.Pool, requestIDs)
	if err != nil {
		return nil, err
	}
	result := make([]domain.PurchaseRequest, len(modelsRows))
	for i, m := range modelsRows {
		result[i] = mapping.ToDomainPurchaseRequest(m, items[m.RequestID], nil)
	}
	return result, nil
}

// ListRequests retrieves a filtered page newest first, plus the total match
// count and the per-status counts over the same filter without the status
// predicate, so the dashboard tabs stay consistent with the page.
func (r *PgxPurchaseRequestRepository) ListRequests(ctx context.Context, filter portsrepo.PurchaseRequestFilter) ([]domain.PurchaseRequest, int, map[domain.ApprovalStatus]int, error) {
	where, args := buildPurchaseFilter(filter, false)
	countWhere, countArgs := buildPurchaseFilter(filter, true)

	counts := make(map[domain.ApprovalStatus]int)
	rows, err := r.Pool.Query(ctx, `SELECT status, COUNT(*) FROM purchase_requests `+countWhere+` GROUP BY status`, countArgs...)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count purchase requests: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, 0, nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[domain.ApprovalStatus(status)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, nil, err
	}

	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_requests `+where, args...).Scan(&total); err != nil {
		return nil, 0, nil, fmt.Errorf("failed to count filtered purchase requests: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	pageArgs := append(append([]any{}, args...), limit, filter.Offset)
	pageQuery := fmt.Sprintf(`SELECT %s FROM purchase_requests %s ORDER BY created_at DESC, request_id DESC LIMIT $%d OFFSET $%d`,
		purchaseRequestColumns, where, len(args)+1, len(args)+2)
	pageRows, err := r.Pool.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to list purchase requests: %w", err)
	}
	defer pageRows.Close()

	var page []models.PurchaseRequest
	var ids []int64
	for pageRows.Next() {
		m, err := scanPurchaseRequest(pageRows)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to scan purchase request: %w", err)
		}
		page = append(page, m)
		ids = append(ids, m.RequestID)
	}
	if err := pageRows.Err(); err != nil {
		return nil, 0, nil, err
	}

	items := map[int64][]models.PurchaseRequestItem{}
	if len(ids) > 0 {
		items, err = r.loadItems(ctx, r.Pool, ids)
		if err != nil {
			return nil, 0, nil, err
		}
	}
	result := make([]domain.PurchaseRequest, len(page))
	for i, m := range page {
		result[i] = mapping.ToDomainPurchaseRequest(m, items[m.RequestID], nil)
	}
	return result, total, counts, nil
}

// buildPurchaseFilter renders the WHERE clause. forCounts drops the status
// predicate so the per-status breakdown covers every tab.
func buildPurchaseFilter(filter portsrepo.PurchaseRequestFilter, forCounts bool) (string, []any) {
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

// ListApprovedByRequester retrieves approved, voucher-bearing requests for use
// as reimbursement references.
func (r *PgxPurchaseRequestRepository) ListApprovedByRequester(ctx context.Context, requesterID string) ([]domain.PurchaseRequest, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+purchaseRequestColumns+`
		FROM purchase_requests
		WHERE requester_id = $1 AND status = $2 AND voucher_id IS NOT NULL
		ORDER BY created_at DESC`, requesterID, string(domain.StatusApproved))
	if err != nil {
		return nil, fmt.Errorf("failed to list approved purchase requests: %w", err)
	}
	defer rows.Close()

	var result []domain.PurchaseRequest
	for rows.Next() {
		m, err := scanPurchaseRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase request: %w", err)
		}
		result = append(result, mapping.ToDomainPurchaseRequest(m, nil, nil))
	}
	return result, rows.Err()
}

// WithRequestLock runs fn against the freshly loaded aggregate under an
// exclusive row lock on the parent row, then persists the mutated aggregate.
// Every exit path releases the lock; an elapsed bounded wait surfaces
// ErrConcurrency with nothing applied.
func (r *PgxPurchaseRequestRepository) WithRequestLock(ctx context.Context, requestID int64, fn func(pr *domain.PurchaseRequest) error) (*domain.PurchaseRequest, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := r.acquireAggregateLock(ctx, tx, `SELECT request_id FROM purchase_requests WHERE request_id = $1 FOR UPDATE`, requestID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("purchase request %d: %w", requestID, apperrors.ErrNotFound)
		}
		return nil, err
	}

	pr, err := r.loadRequest(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}
	if err := fn(pr); err != nil {
		return nil, err
	}
	if err := r.persistRequest(ctx, tx, pr); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return pr, nil
}

func (r *PgxPurchaseRequestRepository) persistRequest(ctx context.Context, tx pgx.Tx, pr *domain.PurchaseRequest) error {
	m := mapping.ToModelPurchaseRequest(*pr)
	_, err := tx.Exec(ctx, `
		UPDATE purchase_requests
		SET status = $2, total_amount = $3, voucher_id = $4, area_manager_id = $5,
			area_manager_approved_at = $6, area_manager_declined_at = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE request_id = $1`,
		m.RequestID, m.Status, m.TotalAmount, m.VoucherID, m.AreaManagerID,
		m.AreaManagerApprovedAt, m.AreaManagerDeclinedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update purchase request %d: %w", m.RequestID, err)
	}

	for i := range pr.Items {
		pr.Items[i].RequestID = pr.RequestID
		item := mapping.ToModelPurchaseItem(pr.Items[i])
		if item.ItemID == 0 {
			err = tx.QueryRow(ctx, `
				INSERT INTO purchase_request_items (request_id, gl_code, expense_item, unit_price, quantity, total_price, status, receipt_validated)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING item_id`,
				item.RequestID, item.GLCode, item.ExpenseItem, item.UnitPrice,
				item.Quantity, item.TotalPrice, item.Status, item.ReceiptValidated,
			).Scan(&pr.Items[i].ItemID)
		} else {
			_, err = tx.Exec(ctx, `
				UPDATE purchase_request_items
				SET gl_code = $2, expense_item = $3, unit_price = $4, quantity = $5, total_price = $6, status = $7, receipt_validated = $8
				WHERE item_id = $1`,
				item.ItemID, item.GLCode, item.ExpenseItem, item.UnitPrice,
				item.Quantity, item.TotalPrice, item.Status, item.ReceiptValidated,
			)
		}
		if err != nil {
			return fmt.Errorf("failed to persist purchase request item: %w", err)
		}
	}

	return persistNewComments(ctx, tx, domain.AggregatePurchaseRequest, pr.RequestID, pr.Comments)
}

// persistNewComments inserts comments that have no id yet. Existing comments
// are immutable and left alone.
func persistNewComments(ctx context.Context, tx pgx.Tx, aggregateType domain.AggregateType, aggregateID int64, comments []domain.Comment) error {
	for i := range comments {
		if comments[i].CommentID != 0 {
			continue
		}
		c := mapping.ToModelComment(comments[i], aggregateType, aggregateID)
		err := tx.QueryRow(ctx, `
			INSERT INTO workflow_comments (aggregate_type, aggregate_id, author_id, author_role, text, system_generated, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING comment_id`,
			c.AggregateType, c.AggregateID, c.AuthorID, c.AuthorRole, c.Text, c.SystemGenerated, c.CreatedAt,
		).Scan(&comments[i].CommentID)
		if err != nil {
			return fmt.Errorf("failed to persist comment: %w", err)
		}
	}
	return nil
}
