// Package types provides shared type definitions for the ASAT order resend
// validator.
//
// This package defines the domain types used across the validator's
// components: order snapshots, sibling orders, validation verdicts, and
// resend outcomes.
//
// # Core Types
//
// OrderDetail is the immutable snapshot fetched once per order:
//
//	order := &types.OrderDetail{
//	    OrderID:      "400123456",
//	    OrderStatus:  "Completed",
//	    RevenueModel: types.RevenueModelOA,
//	    TotalCharged: decimal.NewFromInt(2500),
//	}
//
// Outcome is the tagged decision variant produced by the rule tree. The three
// kinds are constructed through helpers so a reason always travels with a
// non-approval:
//
//	types.Approve()
//	types.Block("Order canceled")
//	types.ViaxReview("Multiple active orders - requires VIAX review")
//
// Verdict combines the outcome with an echo of every input the tree examined,
// so each report record is self-describing:
//
//	verdict.OrderID        // which order
//	verdict.Outcome.Kind   // approve | block | viax_review
//	verdict.ReasonText     // composed human-readable reasoning
//	verdict.Step           // which rule settled it
//
// # Validation
//
// Domain types carry validation methods used at decode boundaries and in
// tests:
//
//	if err := order.Validate(); err != nil {
//	    return err
//	}
//
//	if err := verdict.Validate(); err != nil {
//	    return err
//	}
//
// # Money
//
// Charged amounts use shopspring/decimal rather than floats; the zero-amount
// rules compare with TotalCharged.IsZero(), never with float equality.
package types
