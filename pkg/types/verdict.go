package types

import "github.com/shopspring/decimal"

// Step labels identifying which stage of the decision tree settled a verdict
const (
	StepFetch      = "fetch"
	StepCanceled   = "canceled-check"
	StepError      = "error-check"
	StepSiblings   = "v041-siblings"
	StepCreditMemo = "v041-credit-memo"
	StepRevenue    = "revenue-model"
)

// Verdict is the engine's output for one order: every input the decision
// tree examined, the tagged outcome, and the human-readable reasoning.
// Immutable once produced.
type Verdict struct {
	// Order echo
	OrderID     string
	OrderStatus string
	ArticleID   string
	ArticleDOI  string
	JournalName string

	// Inputs examined
	HasError         bool
	ErrorCode        string
	ErrorDescription string
	IsV041           bool
	ActiveSiblings   int               // Siblings not canceled, excluding this order
	CreditMemo       *CreditMemoStatus // Nil when the lookup never ran
	RevenueModel     string
	PaymentMethod    string
	TotalCharged     decimal.Decimal

	// Decision
	Outcome    Outcome
	ReasonText string // Composed explanation for the report
	Step       string
}

// CanResend reports whether this order may be resent
func (v *Verdict) CanResend() bool {
	return v.Outcome.CanResend()
}

// Validate checks that the verdict is internally consistent
func (v *Verdict) Validate() error {
	if v.OrderID == "" {
		return ErrMissingOrderID
	}

	if err := v.Outcome.Validate(); err != nil {
		return err
	}

	if v.Step == "" {
		return ErrMissingStep
	}

	return nil
}
