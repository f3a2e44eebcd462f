package types

// ResendOutcome records the result of one resend attempt. Outcomes exist
// only for orders that were both approved and selected for resend.
type ResendOutcome struct {
	OrderID        string
	Success        bool
	FailureMessage string // Backend message, empty on success
}
