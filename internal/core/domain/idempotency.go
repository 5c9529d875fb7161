package domain

import "time"

// AdmitOutcome classifies the result of an idempotency gate check.
type AdmitOutcome string

const (
	// AdmitFresh means no record exists; the caller proceeds and must record
	// the response under the key on success.
	AdmitFresh AdmitOutcome = "FRESH"
	// AdmitReplay means a record with a matching request hash exists; the
	// stored response is returned verbatim, no side effects re-run.
	AdmitReplay AdmitOutcome = "REPLAY"
	// AdmitConflict means the key was reused with a different payload.
	AdmitConflict AdmitOutcome = "CONFLICT"
)

// IdempotencyRecord stores the outcome of the first successful processing of
// a key. Subsequent requests with the same key and hash replay the snapshot.
type IdempotencyRecord struct {
	Key              string    `json:"key"` // Caller-supplied, unique per tenant
	TenantID         string    `json:"tenantID"`
	RequestHash      string    `json:"requestHash"`      // SHA-256 of the canonical request
	ResponseSnapshot []byte    `json:"responseSnapshot"` // JSON of the recorded response
	CreatedAt        time.Time `json:"createdAt"`
}
