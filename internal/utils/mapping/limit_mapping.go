package mapping

import (
	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/models"
)

// ToModelLimitConfig converts the domain threshold config to its row model
func ToModelLimitConfig(d domain.LimitConfig) models.LimitConfig {
	return models.LimitConfig{Limit: d.Limit, UpdatedBy: d.UpdatedBy, UpdatedAt: d.UpdatedAt}
}

// ToDomainLimitConfig converts a row model to the domain threshold config
func ToDomainLimitConfig(m models.LimitConfig) domain.LimitConfig {
	return domain.LimitConfig{Limit: m.Limit, UpdatedBy: m.UpdatedBy, UpdatedAt: m.UpdatedAt}
}
