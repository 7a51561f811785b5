package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Store mirrors the stores table.
type Store struct {
	StoreID           int64           `json:"storeID"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Region            string          `json:"region"`
	Budget            decimal.Decimal `json:"budget"`
	RestaurantManager *string         `json:"restaurantManagerID"`
	AreaManager       *string         `json:"areaManagerID"`
	IsActive          bool            `json:"isActive"`
	AuditFields
}

// BudgetChange mirrors the store_budget_history table.
type BudgetChange struct {
	ChangeID       int64           `json:"changeID"`
	StoreID        int64           `json:"storeID"`
	PreviousBudget decimal.Decimal `json:"previousBudget"`
	NewBudget      decimal.Decimal `json:"newBudget"`
	ChangedBy      string          `json:"changedBy"`
	ChangedAt      time.Time       `json:"changedAt"`
}
