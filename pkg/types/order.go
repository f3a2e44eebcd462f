package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Backend enum values the decision tree keys on
const (
	// OrderStatusCanceled is the AMP status of an order canceled upstream
	OrderStatusCanceled = "OrderCanceledInAMP"

	// ErrorCodeV041 marks the conflicting-order condition that secondary
	// verification (siblings + credit memo) can resolve
	ErrorCodeV041 = "V041"

	// PaymentMethodInvoice is the only OA payment method with a charge-amount rule
	PaymentMethodInvoice = "Invoice"
)

// Revenue models with explicit rule coverage; anything else is unrecognized
const (
	RevenueModelOO = "OO" // Online Open
	RevenueModelOA = "OA" // Open Access
)

// OrderDetail is the immutable per-order snapshot validation runs against,
// fetched once per order at the start of its pipeline
type OrderDetail struct {
	// Identification
	OrderID     string
	OrderStatus string

	// Article the order was placed for
	ArticleID   string
	ArticleDOI  string
	JournalName string

	// Workflow error state, derived from the order history
	HasError         bool
	ErrorCode        string
	ErrorDescription string

	// Billing
	RevenueModel  string
	PaymentMethod string
	TotalCharged  decimal.Decimal
}

// IsCanceled reports whether the order was canceled in AMP
func (o *OrderDetail) IsCanceled() bool {
	return o.OrderStatus == OrderStatusCanceled
}

// IsV041 reports whether the detected workflow error is the resolvable V041 code
func (o *OrderDetail) IsV041() bool {
	return o.HasError && o.ErrorCode == ErrorCodeV041
}

// Validate checks the invariants every decoded order detail must satisfy
func (o *OrderDetail) Validate() error {
	if strings.TrimSpace(o.OrderID) == "" {
		return ErrMissingOrderID
	}

	if o.TotalCharged.IsNegative() {
		return ErrNegativeCharge
	}

	return nil
}

// SiblingOrder is another order referencing the same article, excluding the
// order under evaluation. Only the cancellation state matters to the rules.
type SiblingOrder struct {
	OrderID    string
	IsCanceled bool
}

// CreditMemoStatus records whether a credit memo was found among an order's
// canceled siblings and, when found, which sibling carried it
type CreditMemoStatus struct {
	Found   bool
	OrderID string // Empty unless Found
}
