package domain

import "fmt"

// Error types for consistent error handling across the API.
// Each maps to a taxonomy code emitted in the response envelope.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Code returns the taxonomy code, e.g. BOOKING_NOT_FOUND.
func (e *ErrNotFound) Code() string {
	return toUpperSnake(e.Resource) + "_NOT_FOUND"
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates invalid credentials or a missing/invalid token.
type ErrUnauthorized struct {
	Message string
	// TokenExpired distinguishes TOKEN_EXPIRED from INVALID_TOKEN.
	TokenExpired bool
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrForbidden indicates the authenticated user lacks permission.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates a uniqueness conflict (Postgres 23505).
type ErrConflict struct {
	Message string
	// TaxonomyCode overrides the generic RESOURCE_CONFLICT, e.g. EMAIL_EXISTS.
	TaxonomyCode string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrReferenceMissing indicates a referenced row does not exist
// (Postgres 23503 on insert/update).
type ErrReferenceMissing struct {
	Resource string
}

func (e *ErrReferenceMissing) Error() string {
	return fmt.Sprintf("referenced %s does not exist", e.Resource)
}

// ErrInvalidTransition indicates an illegal booking status transition.
type ErrInvalidTransition struct {
	From BookingStatus
	To   BookingStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrPayloadTooLarge indicates an upload exceeded the size limit.
type ErrPayloadTooLarge struct {
	Limit int64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("file exceeds maximum size of %d bytes", e.Limit)
}

func toUpperSnake(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c == ' ' || c == '-':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
