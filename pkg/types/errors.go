package types

import "errors"

// Domain errors for type validation
var (
	ErrMissingOrderID = errors.New("order id is required")
	ErrNegativeCharge = errors.New("total charged amount must not be negative")
	ErrMissingReason  = errors.New("non-approval outcomes require a reason")
	ErrUnknownOutcome = errors.New("unknown outcome kind")
	ErrMissingStep    = errors.New("verdict step is required")
)
