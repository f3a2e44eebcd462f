// Package rules implements the resend validation engine: a fixed decision
// tree evaluated in strict rule order, first match wins.
//
// The engine is a pure function. It performs no I/O of its own; when the
// V041 branch needs sibling or credit-memo data it asks the injected
// providers, so unit tests can count exactly which lookups each branch
// triggers:
//
//	verdict := rules.Evaluate(order, rules.Providers{
//	    Siblings:   func() ([]types.SiblingOrder, error) { ... },
//	    CreditMemo: func(canceled []types.SiblingOrder) (types.CreditMemoStatus, error) { ... },
//	})
//
// Orders that terminate at the cancellation or non-V041 error rules never
// invoke either provider.
//
// # Outcomes
//
// Every path ends in one of three tagged outcomes: Approve, Block(reason),
// or ViaxReview(reason). Reasons are canonical constants (the summary groups
// by them); the per-order detail goes into the verdict's ReasonText.
//
// A failed provider lookup converts to Block("fetch error: <cause>") — the
// engine never returns an error and never panics on well-formed input.
package rules
