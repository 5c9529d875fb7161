package models

import "time"

// IdempotencyKey is the database representation of an idempotency record.
type IdempotencyKey struct {
	Key              string    `json:"key"`
	TenantID         string    `json:"tenantID"`
	RequestHash      string    `json:"requestHash"`
	ResponseSnapshot []byte    `json:"responseSnapshot"`
	CreatedAt        time.Time `json:"createdAt"`
}
