// Package apperrors holds the room server's typed error taxonomy. The kernel
// never uses exceptions for control flow: every rejected intent resolves to
// one of these types so the event egress layer can turn it directly into an
// ActionFailed{kind, reason} without string-matching error text.
package apperrors

import "fmt"

// Kind discriminates the taxonomy a failure belongs to.
type Kind string

const (
	// KindValidation is a rejected intent: not walkable, not owner, seat
	// occupied, stack overflow, invalid color, insufficient funds, unknown
	// definition. Recovered locally; no state change.
	KindValidation Kind = "validation"
	// KindStateConflict is an intent whose preconditions changed between
	// being queued and being dispatched (e.g. a seat taken while pathing).
	// Handled identically to KindValidation.
	KindStateConflict Kind = "state_conflict"
	// KindPersistence is a store read/write failure.
	KindPersistence Kind = "persistence"
	// KindProtocol is a malformed intent from a client.
	KindProtocol Kind = "protocol"
	// KindInternal is an invariant violation; logged, and where possible
	// self-corrected.
	KindInternal Kind = "internal"
)

// ActionFailure is the typed failure a Room Kernel operation returns. The
// Ingress/Egress layer (C7) turns it directly into an ActionFailed event.
type ActionFailure struct {
	Kind   Kind
	Action string // the intent kind that failed, e.g. "Sit", "PlaceFurni"
	Reason string // machine-readable reason, e.g. "not_walkable", "seat_occupied"
}

func (e *ActionFailure) Error() string {
	return fmt.Sprintf("%s failed: %s (%s)", e.Action, e.Reason, e.Kind)
}

// Validation builds a KindValidation failure.
func Validation(action, reason string) *ActionFailure {
	return &ActionFailure{Kind: KindValidation, Action: action, Reason: reason}
}

// StateConflict builds a KindStateConflict failure.
func StateConflict(action, reason string) *ActionFailure {
	return &ActionFailure{Kind: KindStateConflict, Action: action, Reason: reason}
}

// Persistence builds a KindPersistence failure. The caller must not reflect
// the attempted mutation into memory.
func Persistence(action, reason string) *ActionFailure {
	return &ActionFailure{Kind: KindPersistence, Action: action, Reason: reason}
}

// Protocol builds a KindProtocol failure for a malformed intent.
func Protocol(action, reason string) *ActionFailure {
	return &ActionFailure{Kind: KindProtocol, Action: action, Reason: reason}
}

// Internal builds a KindInternal failure for an invariant violation
// discovered mid-operation (e.g. a furniture instance referencing a
// definition no longer in the catalog).
func Internal(action, reason string) *ActionFailure {
	return &ActionFailure{Kind: KindInternal, Action: action, Reason: reason}
}

// NotFoundError represents a resource not found error, used by the
// Persistence Facade and the World Director's room/avatar lookups.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// InternalError represents an invariant violation. Wrap the underlying
// cause and let the caller decide whether self-correction is possible.
type InternalError struct {
	Detail string
	Cause  error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal invariant violated: %s: %v", e.Detail, e.Cause)
	}
	return fmt.Sprintf("internal invariant violated: %s", e.Detail)
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}
