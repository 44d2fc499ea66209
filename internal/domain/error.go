package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPersistence     = errors.New("persistence failure")

	// Checkout / entitlement errors
	ErrUnauthenticated  = errors.New("caller is not authenticated")
	ErrInvalidPlan      = errors.New("unknown plan identifier")
	ErrGateway          = errors.New("payment gateway error")
	ErrMissingReference = errors.New("payment has no external reference")
	ErrUnrecognizedPlan = errors.New("payment matches no known plan or amount")
	ErrProfileNotFound  = errors.New("profile not found for user")
	ErrNoActivePlan     = errors.New("no active plan on profile")

	// Webhook signature errors
	ErrSignatureMalformed = errors.New("malformed x-signature header")
	ErrSignatureInvalid   = errors.New("x-signature digest mismatch")

	// Resumable checkout errors
	ErrResumeConsumed = errors.New("resume token already consumed")
)
