package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitConfig mirrors the single-row limit_config table.
type LimitConfig struct {
	Limit     decimal.Decimal `json:"limit"`
	UpdatedBy string          `json:"updatedBy"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
