// Package apperrors defines the error taxonomy shared by the booking and
// subscription managers, the payment gateways and the HTTP layer. Each type
// maps to one HTTP status; utils.SendAppError performs the mapping.
package apperrors

import "fmt"

// ValidationError rejects malformed or incomplete input before any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthorizationError rejects a caller that does not own the target record.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// NotFoundError is returned when the target record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError is returned by the state machine when a transition is not
// in the table. Carries both sides so clients can display the exact refusal.
type InvalidStateError struct {
	Current   string
	Requested string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.Current, e.Requested)
}

// ConflictError signals a lost optimistic-concurrency race. The record was
// mutated between read and guarded write; the client should refetch and retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return "record was modified concurrently, refetch and retry"
	}
	return e.Message
}

// AlreadyResolvedError is returned when an invite is accepted or rejected a
// second time, so concurrent callers can tell who lost the race.
type AlreadyResolvedError struct {
	Status string
}

func (e *AlreadyResolvedError) Error() string {
	return "booking already resolved with status " + e.Status
}

// AmountMismatchError blocks a completion whose gateway-reported amount does
// not equal the stored amount. Values are minor units.
type AmountMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("gateway amount %d does not match expected amount %d", e.Actual, e.Expected)
}

// QuotaExceededError rejects a deliverable submission past the package quota.
type QuotaExceededError struct {
	Type     string
	Platform string
	Quantity int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("deliverable quota reached for %s on %s (%d allowed)", e.Type, e.Platform, e.Quantity)
}

// GatewayError wraps a provider rejection or unreachability. Unreachable
// providers set Unreachable so the HTTP layer can answer 502 instead of 400.
type GatewayError struct {
	Provider    string
	Code        string
	Message     string
	Unreachable bool
}

func (e *GatewayError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s gateway error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s gateway error: %s", e.Provider, e.Message)
}
