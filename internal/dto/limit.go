package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
)

// UpdateLimitRequest sets the global purchase request threshold.
type UpdateLimitRequest struct {
	Limit decimal.Decimal `json:"limit" binding:"required"`
}

// LimitResponse is the current threshold configuration.
type LimitResponse struct {
	Limit     decimal.Decimal `json:"limit"`
	UpdatedBy string          `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// ToLimitResponse converts the threshold configuration to its response DTO.
func ToLimitResponse(c domain.LimitConfig) LimitResponse {
	resp := LimitResponse{Limit: c.Limit, UpdatedBy: c.UpdatedBy}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}
