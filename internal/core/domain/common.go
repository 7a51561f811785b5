package domain

import "time"

// AuditFields holds the who/when columns every aggregate carries. CreatedBy
// and LastUpdatedBy hold the acting user's id as issued by the identity
// collaborator.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
