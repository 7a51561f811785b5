package mapping

import (
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
)

// ToModelStore converts a domain Store to its row model
func ToModelStore(d domain.Store) models.Store {
	return models.Store{
		StoreID:           d.StoreID,
		Name:              d.Name,
		Code:              d.Code,
		Region:            d.Region,
		Budget:            d.Budget,
		RestaurantManager: strPtrOrNil(d.RestaurantManager),
		AreaManager:       strPtrOrNil(d.AreaManager),
		IsActive:          d.IsActive,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStore converts a row model to the domain Store
func ToDomainStore(m models.Store) domain.Store {
	return domain.Store{
		StoreID:           m.StoreID,
		Name:              m.Name,
		Code:              m.Code,
		Region:            m.Region,
		Budget:            m.Budget,
		RestaurantManager: strOrEmpty(m.RestaurantManager),
		AreaManager:       strOrEmpty(m.AreaManager),
		IsActive:          m.IsActive,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBudgetChange converts a history row to the domain record
func ToDomainBudgetChange(m models.BudgetChange) domain.BudgetChange {
	return domain.BudgetChange{
		StoreID:        m.StoreID,
		PreviousBudget: m.PreviousBudget,
		NewBudget:      m.NewBudget,
		ChangedBy:      m.ChangedBy,
	}
}
