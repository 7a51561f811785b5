package repositories

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// BankReader defines read operations for bank and account data.
type BankReader interface {
	FindBankByID(ctx context.Context, bankID string) (*domain.Bank, error)
	ListBanks(ctx context.Context) ([]domain.Bank, error)
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccountsByBank(ctx context.Context, bankID string) ([]domain.Account, error)
}

// BankWriter defines write operations for bank and account data.
type BankWriter interface {
	CreateBank(ctx context.Context, bank *domain.Bank) error
	UpdateBank(ctx context.Context, bank *domain.Bank) error
	CreateAccount(ctx context.Context, account *domain.Account) error
	UpdateAccount(ctx context.Context, account *domain.Account) error
}

// BankRepositoryFacade combines bank repository interfaces.
type BankRepositoryFacade interface {
	BankReader
	BankWriter
}
