package model

import "time"

// Reconciliation records an object-storage side effect that failed after the
// store mutation already committed. A background pass replays these instead of
// leaving silent inconsistency between the store and the bucket.
type Reconciliation struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Action       string     `gorm:"size:32" json:"action"` // e.g. "delete_object"
	ObjectKey    string     `gorm:"size:512" json:"objectKey"`
	ResourceType string     `gorm:"size:32" json:"resourceType"`
	ResourceID   int64      `json:"resourceId"`
	Reason       string     `gorm:"size:512" json:"reason"`
	CreatedAt    time.Time  `json:"createdAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}
