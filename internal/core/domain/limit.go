package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPurchaseLimit applies when no LimitConfig row exists. Documented
// default, never silently zero.
var DefaultPurchaseLimit = decimal.NewFromInt(5000)

// LimitConfig is the organization-wide minimum item total for purchase
// requests and the receipt-requirement threshold for reimbursement items.
// Singleton, mutable only by admins, and always fetched fresh per operation
// so a threshold update takes effect immediately.
type LimitConfig struct {
	Limit     decimal.Decimal `json:"limit"`
	UpdatedBy string          `json:"updatedBy"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
