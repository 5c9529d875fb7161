package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed structural or balance checks.
var ErrValidation = errors.New("validation error")

// ErrAccountIneligible indicates that a referenced account cannot receive
// postings (unknown, inactive, group/header, or wrong company scope).
var ErrAccountIneligible = errors.New("account not eligible for posting")

// ErrForbidden indicates that the caller's role forbids the action outright.
var ErrForbidden = errors.New("action forbidden for role")

// ErrIdempotencyConflict indicates that an idempotency key was reused with a
// different request payload. This is a client bug, never resolved silently.
var ErrIdempotencyConflict = errors.New("idempotency key reused with different payload")

// ErrPolicyConfiguration indicates the SoD policy table itself is malformed.
// This is a deployment defect, not a user error.
var ErrPolicyConfiguration = errors.New("policy configuration error")

// ErrUpstreamUnavailable indicates a required data collaborator (account or
// tax lookup) failed. Account lookups always fail closed on this.
var ErrUpstreamUnavailable = errors.New("upstream lookup unavailable")

// ErrConflict indicates the requested state transition is not allowed from
// the entity's current state.
var ErrConflict = errors.New("conflicting state")

// ErrDuplicate indicates an attempt to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
