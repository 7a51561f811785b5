package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
	"github.com/temmy669/imprest-portal-back-up/internal/utils/mapping"
)

type PgxBankRepository struct {
	pool *pgxpool.Pool
}

// newPgxBankRepository creates a new repository for bank and account data.
func newPgxBankRepository(pool *pgxpool.Pool) portsrepo.BankRepositoryFacade {
	return &PgxBankRepository{pool: pool}
}

var _ portsrepo.BankRepositoryFacade = (*PgxBankRepository)(nil)

const bankColumns = `bank_id, bank_name, short_code, status, created_at, created_by, last_updated_at, last_updated_by`
const accountColumns = `account_id, bank_id, account_number, account_name, status, created_at, created_by, last_updated_at, last_updated_by`

func scanBank(row pgx.Row) (models.Bank, error) {
	var m models.Bank
	err := row.Scan(&m.BankID, &m.BankName, &m.ShortCode, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(&m.AccountID, &m.BankID, &m.AccountNumber, &m.AccountName, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

// CreateBank inserts a new bank.
func (r *PgxBankRepository) CreateBank(ctx context.Context, bank *domain.Bank) error {
	m := mapping.ToModelBank(*bank)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO banks (bank_id, bank_name, short_code, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.BankID, m.BankName, m.ShortCode, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
			return fmt.Errorf("%w: bank with short code %s already exists", apperrors.ErrDuplicate, m.ShortCode)
		}
		return fmt.Errorf("failed to create bank: %w", err)
	}
	return nil
}

// UpdateBank updates bank attributes, including the active status.
func (r *PgxBankRepository) UpdateBank(ctx context.Context, bank *domain.Bank) error {
	m := mapping.ToModelBank(*bank)
	tag, err := r.pool.Exec(ctx, `
		UPDATE banks
		SET bank_name = $2, short_code = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE bank_id = $1`,
		m.BankID, m.BankName, m.ShortCode, m.Status, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update bank %s: %w", m.BankID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bank %s: %w", m.BankID, apperrors.ErrNotFound)
	}
	return nil
}

// CreateAccount inserts a new payout account.
func (r *PgxBankRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	m := mapping.ToModelAccount(*account)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bank_accounts (account_id, bank_id, account_number, account_name, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.AccountID, m.BankID, m.AccountNumber, m.AccountName, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
			return fmt.Errorf("%w: account number %s already exists", apperrors.ErrDuplicate, m.AccountNumber)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// UpdateAccount updates account attributes, including the active status.
func (r *PgxBankRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	m := mapping.ToModelAccount(*account)
	tag, err := r.pool.Exec(ctx, `
		UPDATE bank_accounts
		SET account_number = $2, account_name = $3, status = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1`,
		m.AccountID, m.AccountNumber, m.AccountName, m.Status, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", m.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", m.AccountID, apperrors.ErrNotFound)
	}
	return nil
}

// FindBankByID retrieves a single bank.
func (r *PgxBankRepository) FindBankByID(ctx context.Context, bankID string) (*domain.Bank, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bankColumns+` FROM banks WHERE bank_id = $1`, bankID)
	m, err := scanBank(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bank %s: %w", bankID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find bank %s: %w", bankID, err)
	}
	bank := mapping.ToDomainBank(m)
	return &bank, nil
}

// ListBanks retrieves all banks ordered by name.
func (r *PgxBankRepository) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bankColumns+` FROM banks ORDER BY bank_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	defer rows.Close()

	var banks []domain.Bank
	for rows.Next() {
		m, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank: %w", err)
		}
		banks = append(banks, mapping.ToDomainBank(m))
	}
	return banks, rows.Err()
}

// FindAccountByID retrieves a single payout account.
func (r *PgxBankRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE account_id = $1`, accountID)
	m, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	account := mapping.ToDomainAccount(m)
	return &account, nil
}

// ListAccountsByBank retrieves the accounts held at a bank.
func (r *PgxBankRepository) ListAccountsByBank(ctx context.Context, bankID string) ([]domain.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE bank_id = $1 ORDER BY account_name`, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for bank %s: %w", bankID, err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, mapping.ToDomainAccount(m))
	}
	return accounts, rows.Err()
}
