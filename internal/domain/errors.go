package domain

import "errors"

// Sentinel errors for domain-level error handling. Session dispatch maps
// these to refusal replies and the HTTP surface maps them to status codes.
var (
	ErrDuplicateClient       = errors.New("duplicate_client")
	ErrUnknownClient         = errors.New("unknown_client")
	ErrUnknownStock          = errors.New("unknown_stock")
	ErrInsufficientInventory = errors.New("insufficient_inventory")
	ErrInsufficientFunds     = errors.New("insufficient_funds")
	ErrNoSuchHolding         = errors.New("no_such_holding")
	ErrInsufficientHolding   = errors.New("insufficient_holding")
	ErrRegistrationTimeout   = errors.New("registration_timeout")
	ErrMalformedRequest      = errors.New("malformed_request")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
