package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

func (a *AuditFields) touch(by string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = by
}

func newAuditFields(by string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     by,
		LastUpdatedAt: now,
		LastUpdatedBy: by,
	}
}
