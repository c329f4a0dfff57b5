package services

import "errors"

// Business errors surfaced by the services. Handlers map these onto HTTP
// status codes; anything else is an internal error.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidDeliveryTime = errors.New("invalid delivery time")
	ErrAmountBelowMinimum  = errors.New("amount below tier minimum")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrNotFound            = errors.New("not found")
	ErrOracleUnavailable   = errors.New("price oracle unavailable")
	ErrAlreadyApproved     = errors.New("already approved")
	ErrAlreadyFinalized    = errors.New("already finalized")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
)
