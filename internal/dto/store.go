package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// CreateStoreRequest registers a retail location with its imprest budget.
type CreateStoreRequest struct {
	Name              string          `json:"name" binding:"required"`
	Code              string          `json:"code" binding:"required"`
	Region            string          `json:"region"`
	Budget            decimal.Decimal `json:"budget" binding:"required"`
	RestaurantManager string          `json:"restaurantManagerID"`
	AreaManager       string          `json:"areaManagerID"`
}

// UpdateStoreRequest updates store attributes. Nil fields are left untouched;
// a budget change is recorded in the budget history.
type UpdateStoreRequest struct {
	Name              *string          `json:"name"`
	Code              *string          `json:"code"`
	Region            *string          `json:"region"`
	Budget            *decimal.Decimal `json:"budget"`
	RestaurantManager *string          `json:"restaurantManagerID"`
	AreaManager       *string          `json:"areaManagerID"`
	IsActive          *bool            `json:"isActive"`
}

// StoreResponse is a store with its derived imprest balance.
type StoreResponse struct {
	StoreID           int64           `json:"storeID"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Region            string          `json:"region"`
	Budget            decimal.Decimal `json:"budget"`
	Balance           decimal.Decimal `json:"balance"`
	RestaurantManager string          `json:"restaurantManagerID,omitempty"`
	AreaManager       string          `json:"areaManagerID,omitempty"`
	IsActive          bool            `json:"isActive"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// BudgetChangeResponse is one entry of a store's budget history.
type BudgetChangeResponse struct {
	StoreID        int64           `json:"storeID"`
	PreviousBudget decimal.Decimal `json:"previousBudget"`
	NewBudget      decimal.Decimal `json:"newBudget"`
	ChangedBy      string          `json:"changedBy"`
}

// ToStoreResponse converts a store and its computed balance to the response DTO.
func ToStoreResponse(s domain.Store, balance decimal.Decimal) StoreResponse {
	return StoreResponse{
		StoreID:           s.StoreID,
		Name:              s.Name,
		Code:              s.Code,
		Region:            s.Region,
		Budget:            s.Budget,
		Balance:           balance,
		RestaurantManager: s.RestaurantManager,
		AreaManager:       s.AreaManager,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt,
	}
}

// ToBudgetChangeResponse converts a budget history entry.
func ToBudgetChangeResponse(c domain.BudgetChange) BudgetChangeResponse {
	return BudgetChangeResponse{
		StoreID:        c.StoreID,
		PreviousBudget: c.PreviousBudget,
		NewBudget:      c.NewBudget,
		ChangedBy:      c.ChangedBy,
	}
}
