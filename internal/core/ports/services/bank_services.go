package services

import (
	"context"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// BankReaderSvc defines read operations for banks and payout accounts
type BankReaderSvc interface {
	// GetBankByID retrieves a bank with its accounts.
	GetBankByID(ctx context.Context, bankID string) (*dto.BankResponse, error)

	// ListBanks lists all banks with their accounts.
	ListBanks(ctx context.Context, activeOnly bool) ([]dto.BankResponse, error)
}

// BankWriterSvc defines admin mutations for banks and payout accounts
type BankWriterSvc interface {
	// CreateBank registers a disbursement bank.
	CreateBank(ctx context.Context, actor domain.Actor, req dto.CreateBankRequest) (*domain.Bank, error)

	// CreateAccount registers a payout account under an existing bank.
	CreateAccount(ctx context.Context, actor domain.Actor, req dto.CreateAccountRequest) (*domain.Account, error)

	// ToggleBankStatus flips a bank between active and inactive.
	ToggleBankStatus(ctx context.Context, actor domain.Actor, bankID string) (*domain.Bank, error)

	// ToggleAccountStatus flips an account between active and inactive.
	ToggleAccountStatus(ctx context.Context, actor domain.Actor, accountID string) (*domain.Account, error)
}

// BankSvcFacade combines all bank service interfaces
type BankSvcFacade interface {
	BankReaderSvc
	BankWriterSvc
}
