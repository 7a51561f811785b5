package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temmy669/imprest-portal-back-up/internal/apperrors"
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/core/services"
	"github.com/temmy669/imprest-portal-back-up/internal/dto"
)

func TestBankService_CreateBank(t *testing.T) {
	ctx := context.Background()
	req := dto.CreateBankRequest{BankName: "First Bank", ShortCode: "FBN"}

	t.Run("treasurer creates an active bank", func(t *testing.T) {
		bankRepo := new(MockBankRepository)
		bankRepo.On("CreateBank", mock.Anything, mock.AnythingOfType("*domain.Bank")).Return(nil)

		svc := services.NewBankService(bankRepo)
		bank, err := svc.CreateBank(ctx, treasurerActor(), req)
		require.NoError(t, err)
		assert.NotEmpty(t, bank.BankID)
		assert.Equal(t, domain.BankActive, bank.Status)
		bankRepo.AssertExpectations(t)
	})

	t.Run("area managers are rejected", func(t *testing.T) {
		svc := services.NewBankService(new(MockBankRepository))
		_, err := svc.CreateBank(ctx, areaManagerActor(), req)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestBankService_CreateAccountRequiresExistingBank(t *testing.T) {
	ctx := context.Background()

	bankRepo := new(MockBankRepository)
	bankRepo.On("FindBankByID", mock.Anything, "bank-9").Return(nil, apperrors.ErrNotFound)

	svc := services.NewBankService(bankRepo)
	_, err := svc.CreateAccount(ctx, treasurerActor(), dto.CreateAccountRequest{
		BankID: "bank-9", AccountNumber: "0123456789", AccountName: "Imprest Ops",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	bankRepo.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}

func TestBankService_ToggleBankStatus(t *testing.T) {
	ctx := context.Background()

	bankRepo := new(MockBankRepository)
	bankRepo.On("FindBankByID", mock.Anything, "bank-1").
		Return(&domain.Bank{BankID: "bank-1", BankName: "First Bank", Status: domain.BankActive}, nil)
	bankRepo.On("UpdateBank", mock.Anything, mock.MatchedBy(func(b *domain.Bank) bool {
		return b.Status == domain.BankInactive
	})).Return(nil)

	svc := services.NewBankService(bankRepo)
	bank, err := svc.ToggleBankStatus(ctx, treasurerActor(), "bank-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BankInactive, bank.Status)
	bankRepo.AssertExpectations(t)
}

func TestBankService_ListBanksActiveOnly(t *testing.T) {
	ctx := context.Background()

	banks := []domain.Bank{
		{BankID: "bank-1", BankName: "First Bank", Status: domain.BankActive},
		{BankID: "bank-2", BankName: "Defunct Bank", Status: domain.BankInactive},
	}
	accounts := []domain.Account{
		{AccountID: "acct-1", BankID: "bank-1", AccountNumber: "111", Status: domain.BankActive},
		{AccountID: "acct-2", BankID: "bank-1", AccountNumber: "222", Status: domain.BankInactive},
	}

	bankRepo := new(MockBankRepository)
	bankRepo.On("ListBanks", mock.Anything).Return(banks, nil)
	bankRepo.On("ListAccountsByBank", mock.Anything, "bank-1").Return(accounts, nil)

	svc := services.NewBankService(bankRepo)
	out, err := svc.ListBanks(ctx, true)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "bank-1", out[0].BankID)
	require.Len(t, out[0].Accounts, 1)
	assert.Equal(t, "acct-1", out[0].Accounts[0].AccountID)
}
