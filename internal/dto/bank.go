package dto

import "github.com/temmy669/imprest-portal-back-up/internal/core/domain"

// CreateBankRequest registers a disbursement bank.
type CreateBankRequest struct {
	BankName  string `json:"bankName" binding:"required"`
	ShortCode string `json:"bankShortCode" binding:"required"`
}

// CreateAccountRequest registers a payout account under a bank.
type CreateAccountRequest struct {
	BankID        string `json:"bankID" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	AccountName   string `json:"accountName" binding:"required"`
}

// BankResponse is a bank with its accounts.
type BankResponse struct {
	BankID    string            `json:"bankID"`
	BankName  string            `json:"bankName"`
	ShortCode string            `json:"bankShortCode"`
	Status    string            `json:"status"`
	Accounts  []AccountResponse `json:"accounts,omitempty"`
}

// AccountResponse is a payout account.
type AccountResponse struct {
	AccountID     string `json:"accountID"`
	BankID        string `json:"bankID"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Status        string `json:"status"`
}

// ToBankResponse converts a bank and its accounts to the response DTO.
func ToBankResponse(b domain.Bank, accounts []domain.Account) BankResponse {
	resp := BankResponse{
		BankID:    b.BankID,
		BankName:  b.BankName,
		ShortCode: b.ShortCode,
		Status:    string(b.Status),
	}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, ToAccountResponse(a))
	}
	return resp
}

// ToAccountResponse converts a payout account to the response DTO.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		BankID:        a.BankID,
		AccountNumber: a.AccountNumber,
		AccountName:   a.AccountName,
		Status:        string(a.Status),
	}
}
