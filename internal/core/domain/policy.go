package domain

import "github.com/shopspring/decimal"

// Role identifies the caller's role within a tenant.
type Role string

const (
	RoleClerk       Role = "CLERK"
	RoleManager     Role = "MANAGER"
	RoleFinanceLead Role = "FINANCE_LEAD"
	RoleAdmin       Role = "ADMIN"
)

// Action is a ledger-affecting operation subject to segregation-of-duties
// policy.
type Action string

const (
	ActionPostJournal    Action = "POST_JOURNAL"
	ActionApproveJournal Action = "APPROVE_JOURNAL"
	ActionReverseJournal Action = "REVERSE_JOURNAL"
)

// SoDRule is one row of the declarative policy table: what a role may do for
// an action, up to an optional amount threshold.
type SoDRule struct {
	Action           Action           `json:"action"`
	MaxAmount        *decimal.Decimal `json:"maxAmount,omitempty"` // nil = no upper bound
	RequiresApproval bool             `json:"requiresApproval"`
	ApproverRoles    []Role           `json:"approverRoles,omitempty"`
}

// SoDPolicy is the injected, immutable policy table keyed by role. It is
// deployment configuration; the evaluator never defaults it internally.
type SoDPolicy struct {
	Rules map[Role][]SoDRule `json:"rules"`
}

// SoDDecision is the evaluator's verdict for one request. Derived, never
// persisted by the engine itself.
type SoDDecision struct {
	Allowed          bool   `json:"allowed"`
	RequiresApproval bool   `json:"requiresApproval"`
	ApproverRoles    []Role `json:"approverRoles,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// PostingContext is the scope under which validation and SoD evaluation run.
// Carried end-to-end from the API layer, never defaulted inside the engine.
type PostingContext struct {
	TenantID  string `json:"tenantID"`
	CompanyID string `json:"companyID"`
	UserID    string `json:"userID"`
	UserRole  Role   `json:"userRole"`
}
