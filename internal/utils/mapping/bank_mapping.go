package mapping

import (
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
)

// ToModelBank converts a domain Bank to its row model
func ToModelBank(d domain.Bank) models.Bank {
	return models.Bank{
		BankID:      d.BankID,
		BankName:    d.BankName,
		ShortCode:   d.ShortCode,
		Status:      string(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBank converts a row model to the domain Bank
func ToDomainBank(m models.Bank) domain.Bank {
	return domain.Bank{
		BankID:      m.BankID,
		BankName:    m.BankName,
		ShortCode:   m.ShortCode,
		Status:      domain.BankStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAccount converts a domain Account to its row model
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		BankID:        d.BankID,
		AccountNumber: d.AccountNumber,
		AccountName:   d.AccountName,
		Status:        string(d.Status),
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a row model to the domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		BankID:        m.BankID,
		AccountNumber: m.AccountNumber,
		AccountName:   m.AccountName,
		Status:        domain.BankStatus(m.Status),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
