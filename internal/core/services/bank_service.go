package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	portsrepo "github.com/temmy669/imprest-portal-back-up/internal/core/ports/repositories"
	portssvc "github.com/temmy669/imprest-portal-back-up/internal/core/ports/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

// bankService manages disbursement banks and payout accounts.
type bankService struct {
	BaseService
	bankRepo portsrepo.BankRepositoryFacade
}

// NewBankService creates a new bank service.
func NewBankService(bankRepo portsrepo.BankRepositoryFacade) portssvc.BankSvcFacade {
	return &bankService{bankRepo: bankRepo}
}

var _ portssvc.BankSvcFacade = (*bankService)(nil)

func requireTreasurerOrAdmin(actor domain.Actor, action string) error {
	if actor.Role != domain.RoleTreasurer && actor.Role != domain.RoleAdmin {
		return apperrors.NewForbiddenError("role %s cannot %s", actor.Role, action)
	}
	return nil
}

// CreateBank registers a disbursement bank.
func (s *bankService) CreateBank(ctx context.Context, actor domain.Actor, req dto.CreateBankRequest) (*domain.Bank, error) {
	if err := requireTreasurerOrAdmin(actor, "manage banks"); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	bank := &domain.Bank{
		BankID:    uuid.NewString(),
		BankName:  req.BankName,
		ShortCode: req.ShortCode,
		Status:    domain.BankActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.bankRepo.CreateBank(ctx, bank); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "bank created", slog.String("bank_id", bank.BankID), slog.String("short_code", bank.ShortCode))
	return bank, nil
}

// CreateAccount registers a payout account under an existing bank.
func (s *bankService) CreateAccount(ctx context.Context, actor domain.Actor, req dto.CreateAccountRequest) (*domain.Account, error) {
	if err := requireTreasurerOrAdmin(actor, "manage payout accounts"); err != nil {
		return nil, err
	}
	if _, err := s.bankRepo.FindBankByID(ctx, req.BankID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	account := &domain.Account{
		AccountID:     uuid.NewString(),
		BankID:        req.BankID,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Status:        domain.BankActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.bankRepo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "payout account created", slog.String("account_id", account.AccountID), slog.String("bank_id", account.BankID))
	return account, nil
}

// ToggleBankStatus flips a bank between active and inactive.
func (s *bankService) ToggleBankStatus(ctx context.Context, actor domain.Actor, bankID string) (*domain.Bank, error) {
	if err := requireTreasurerOrAdmin(actor, "manage banks"); err != nil {
		return nil, err
	}
	bank, err := s.bankRepo.FindBankByID(ctx, bankID)
	if err != nil {
		return nil, err
	}
	bank.Status = bank.Status.Toggle()
	bank.LastUpdatedAt = time.Now().UTC()
	bank.LastUpdatedBy = actor.UserID
	if err := s.bankRepo.UpdateBank(ctx, bank); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "bank status toggled", slog.String("bank_id", bankID), slog.String("status", string(bank.Status)))
	return bank, nil
}

// ToggleAccountStatus flips an account between active and inactive.
func (s *bankService) ToggleAccountStatus(ctx context.Context, actor domain.Actor, accountID string) (*domain.Account, error) {
	if err := requireTreasurerOrAdmin(actor, "manage payout accounts"); err != nil {
		return nil, err
	}
	account, err := s.bankRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.Status = account.Status.Toggle()
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = actor.UserID
	if err := s.bankRepo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "payout account status toggled", slog.String("account_id", accountID), slog.String("status", string(account.Status)))
	return account, nil
}

// GetBankByID retrieves a bank with its accounts.
func (s *bankService) GetBankByID(ctx context.Context, bankID string) (*dto.BankResponse, error) {
	bank, err := s.bankRepo.FindBankByID(ctx, bankID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.bankRepo.ListAccountsByBank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToBankResponse(*bank, accounts)
	return &resp, nil
}

// ListBanks lists banks with their accounts, optionally active only.
func (s *bankService) ListBanks(ctx context.Context, activeOnly bool) ([]dto.BankResponse, error) {
	banks, err := s.bankRepo.ListBanks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BankResponse, 0, len(banks))
	for _, bank := range banks {
		if activeOnly && bank.Status != domain.BankActive {
			continue
		}
		accounts, err := s.bankRepo.ListAccountsByBank(ctx, bank.BankID)
		if err != nil {
			return nil, err
		}
		if activeOnly {
			active := accounts[:0]
			for _, a := range accounts {
				if a.Status == domain.BankActive {
					active = append(active, a)
				}
			}
			accounts = active
		}
		out = append(out, dto.ToBankResponse(bank, accounts))
	}
	return out, nil
}
