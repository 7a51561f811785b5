package domain

// BankStatus marks a bank or account as usable for disbursement.
type BankStatus string

const (
	BankActive   BankStatus = "active"
	BankInactive BankStatus = "inactive"
)

// Toggle flips between active and inactive.
func (s BankStatus) Toggle() BankStatus {
	if s == BankActive {
		return BankInactive
	}
	return BankActive
}

// Bank is a disbursement counterparty.
type Bank struct {
	BankID    string     `json:"bankID"` // UUID
	BankName  string     `json:"bankName"`
	ShortCode string     `json:"bankShortCode"`
	Status    BankStatus `json:"status"`
	AuditFields
}

// Account is a payout account held at a bank.
type Account struct {
	AccountID     string     `json:"accountID"` // UUID
	BankID        string     `json:"bankID"`
	AccountNumber string     `json:"accountNumber"`
	AccountName   string     `json:"accountName"`
	Status        BankStatus `json:"status"`
	AuditFields
}
