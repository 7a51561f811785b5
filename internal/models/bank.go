package models

// Bank mirrors the banks table.
type Bank struct {
	BankID    string `json:"bankID"`
	BankName  string `json:"bankName"`
	ShortCode string `json:"bankShortCode"`
	Status    string `json:"status"`
	AuditFields
}

// Account mirrors the bank_accounts table.
type Account struct {
	AccountID     string `json:"accountID"`
	BankID        string `json:"bankID"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Status        string `json:"status"`
	AuditFields
}
