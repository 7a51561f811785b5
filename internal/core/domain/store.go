package domain

import "github.com/shopspring/decimal"

// Store is a retail location holding an imprest budget.
type Store struct {
	StoreID           int64           `json:"storeID"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Region            string          `json:"region"`
	Budget            decimal.Decimal `json:"budget"`
	RestaurantManager string          `json:"restaurantManagerID"`
	AreaManager       string          `json:"areaManagerID"`
	IsActive          bool            `json:"isActive"`
	AuditFields
}

// Balance derives the remaining imprest: budget minus the total of
// reimbursements whose Internal Control track is approved. The balance is
// never persisted; it is recomputed on every read so concurrent approvals
// cannot drift it.
func (s Store) Balance(approvedReimbursementTotal decimal.Decimal) decimal.Decimal {
	return s.Budget.Sub(approvedReimbursementTotal)
}

// BudgetChange records an admin budget update for audit.
type BudgetChange struct {
	StoreID        int64           `json:"storeID"`
	PreviousBudget decimal.Decimal `json:"previousBudget"`
	NewBudget      decimal.Decimal `json:"newBudget"`
	ChangedBy      string          `json:"changedBy"`
}
