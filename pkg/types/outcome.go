package types

// OutcomeKind tags the three terminal decisions of the validation tree
type OutcomeKind string

const (
	OutcomeApprove    OutcomeKind = "approve"
	OutcomeBlock      OutcomeKind = "block"
	OutcomeViaxReview OutcomeKind = "viax_review"
)

// Outcome is the tagged decision produced for one order. Reason carries the
// canonical short explanation and is empty only for approvals.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// Approve builds an approving outcome
func Approve() Outcome {
	return Outcome{Kind: OutcomeApprove}
}

// Block builds a blocking outcome with its canonical reason
func Block(reason string) Outcome {
	return Outcome{Kind: OutcomeBlock, Reason: reason}
}

// ViaxReview builds an outcome escalating the order to manual VIAX review
func ViaxReview(reason string) Outcome {
	return Outcome{Kind: OutcomeViaxReview, Reason: reason}
}

// CanResend reports whether the outcome permits resending the order
func (o Outcome) CanResend() bool {
	return o.Kind == OutcomeApprove
}

// Validate checks that the outcome kind is known and that non-approvals
// carry a reason
func (o Outcome) Validate() error {
	switch o.Kind {
	case OutcomeApprove:
		return nil
	case OutcomeBlock, OutcomeViaxReview:
		if o.Reason == "" {
			return ErrMissingReason
		}
		return nil
	default:
		return ErrUnknownOutcome
	}
}
