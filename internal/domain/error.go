package domain

import "errors"

var (
	// Order issuance
	ErrInvalidAmount      = errors.New("invalid order amount")
	ErrUnknownPlanAmount  = errors.New("amount does not match any plan")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// Payment confirmation
	ErrMalformedConfirmation = errors.New("incomplete payment confirmation")
	ErrSignatureMismatch     = errors.New("invalid payment signature")
	ErrPaymentNotFound       = errors.New("payment record not found")
	ErrOwnershipViolation    = errors.New("payment does not belong to this user")
	ErrPaymentAlreadyFailed  = errors.New("payment already marked as failed")

	// Infrastructure
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
