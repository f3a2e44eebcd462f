package rules

import (
	"errors"
	"fmt"

	"github.com/wppops/asat-validator/pkg/types"
)

// Canonical outcome reasons. These are the grouping keys for run summaries,
// so they carry no per-order detail; ReasonText does.
const (
	ReasonOrderCanceled  = "Order canceled"
	ReasonOtherError     = "other error"
	ReasonMultipleActive = "Multiple active orders - requires VIAX review"
	ReasonNoCreditMemo   = "Canceled order without credit memo - requires VIAX review"
	ReasonZeroChargeOO   = "OO with totalChargedAmount = 0"
	ReasonZeroChargeOA   = "OA + Invoice with totalChargedAmount = 0"
	ReasonUnknownRevenue = "unrecognized revenue model"
)

// fetchReasonPrefix heads the reason of every verdict blocked by a failed
// lookup rather than by a rule
const fetchReasonPrefix = "fetch error: "

var (
	errNoSiblingLookup    = errors.New("sibling lookup unavailable")
	errNoCreditMemoLookup = errors.New("credit memo lookup unavailable")
)

// SiblingLookup lists the other orders for the same article. Invoked only
// when the V041 branch needs it.
type SiblingLookup func() ([]types.SiblingOrder, error)

// CreditMemoLookup checks canceled siblings for a credit memo. Invoked only
// when the V041 branch found no active siblings.
type CreditMemoLookup func(canceled []types.SiblingOrder) (types.CreditMemoStatus, error)

// Providers carries the lazy secondary lookups the decision tree may
// request. The tree calls each at most once, and only on the branch that
// needs its data.
type Providers struct {
	Siblings   SiblingLookup
	CreditMemo CreditMemoLookup
}

// Evaluate walks the resend decision tree for one order. Rules apply in
// strict order and the first match wins:
//
//  1. Canceled orders are blocked outright.
//  2. Orders without a workflow error go straight to the revenue rule.
//  3. Errors other than V041 are blocked. V041 escalates to VIAX review
//     when the article has active sibling orders, or when its canceled
//     siblings carry no credit memo; a found credit memo resolves the V041
//     and the revenue rule decides.
//  4. Revenue rule: OO and OA+Invoice block on a zero charged amount, OA
//     with any other payment method is approved regardless of amount, and
//     any revenue model outside OO/OA is blocked as unrecognized.
//
// Evaluate is total and deterministic: it always returns a verdict, and a
// failed lookup becomes a blocked verdict, never a panic or an error.
func Evaluate(order *types.OrderDetail, p Providers) types.Verdict {
	v := newVerdict(order)

	// Rule 1: canceled orders never resend; nothing else is examined
	if order.IsCanceled() {
		return settle(v, types.StepCanceled, types.Block(ReasonOrderCanceled),
			"order was canceled in AMP - cannot resend")
	}

	// Rules 2 and 3: workflow errors
	v041Resolved := false
	if order.HasError {
		if order.ErrorCode != types.ErrorCodeV041 {
			return settle(v, types.StepError, types.Block(ReasonOtherError),
				fmt.Sprintf("error %s: %s - cannot resend", codeOrUnknown(order.ErrorCode), order.ErrorDescription))
		}

		// V041 needs secondary verification through the article's siblings
		if p.Siblings == nil {
			return settle(v, types.StepSiblings, types.Block(fetchReason(errNoSiblingLookup)), fetchReason(errNoSiblingLookup))
		}
		siblings, err := p.Siblings()
		if err != nil {
			return settle(v, types.StepSiblings, types.Block(fetchReason(err)), fetchReason(err))
		}

		canceled := make([]types.SiblingOrder, 0, len(siblings))
		for _, sibling := range siblings {
			if sibling.IsCanceled {
				canceled = append(canceled, sibling)
			} else {
				v.ActiveSiblings++
			}
		}

		if v.ActiveSiblings > 0 {
			return settle(v, types.StepSiblings, types.ViaxReview(ReasonMultipleActive),
				fmt.Sprintf("%d active sibling order(s) for article %s - requires VIAX review", v.ActiveSiblings, order.ArticleID))
		}

		if p.CreditMemo == nil {
			return settle(v, types.StepCreditMemo, types.Block(fetchReason(errNoCreditMemoLookup)), fetchReason(errNoCreditMemoLookup))
		}
		memo, err := p.CreditMemo(canceled)
		if err != nil {
			return settle(v, types.StepCreditMemo, types.Block(fetchReason(err)), fetchReason(err))
		}
		v.CreditMemo = &memo

		if !memo.Found {
			return settle(v, types.StepCreditMemo, types.ViaxReview(ReasonNoCreditMemo),
				"canceled sibling orders carry no credit memo - requires VIAX review")
		}

		// Credit memo found: the V041 is resolved and only flavors the
		// reason text from here on
		v041Resolved = true
	}

	// Rule 4: revenue model decides everything that survived the error rules
	prefix := ""
	if v041Resolved {
		prefix = fmt.Sprintf("V041 resolved (credit memo on order %s) + ", v.CreditMemo.OrderID)
	}

	switch order.RevenueModel {
	case types.RevenueModelOO:
		if order.TotalCharged.IsZero() {
			return settle(v, types.StepRevenue, types.Block(ReasonZeroChargeOO),
				prefix+"OO with totalChargedAmount = 0 - cannot resend")
		}
		return settle(v, types.StepRevenue, types.Approve(),
			prefix+fmt.Sprintf("OO with totalChargedAmount = %s - can resend", order.TotalCharged))

	case types.RevenueModelOA:
		if order.PaymentMethod == types.PaymentMethodInvoice {
			if order.TotalCharged.IsZero() {
				return settle(v, types.StepRevenue, types.Block(ReasonZeroChargeOA),
					prefix+"OA + Invoice with totalChargedAmount = 0 - cannot resend")
			}
			return settle(v, types.StepRevenue, types.Approve(),
				prefix+fmt.Sprintf("OA + Invoice with totalChargedAmount = %s - can resend", order.TotalCharged))
		}
		return settle(v, types.StepRevenue, types.Approve(),
			prefix+fmt.Sprintf("OA with payment method %q - can resend", order.PaymentMethod))

	default:
		return settle(v, types.StepRevenue, types.Block(ReasonUnknownRevenue),
			prefix+fmt.Sprintf("revenue model %q has no resend rule - blocked", order.RevenueModel))
	}
}

// FetchBlocked builds the verdict for an order whose detail lookup failed
// before any rule could run
func FetchBlocked(orderID string, cause error) types.Verdict {
	reason := fetchReason(cause)
	return types.Verdict{
		OrderID:    orderID,
		Outcome:    types.Block(reason),
		ReasonText: reason,
		Step:       types.StepFetch,
	}
}

// fetchReason formats the canonical reason for a failed lookup
func fetchReason(cause error) string {
	return fetchReasonPrefix + cause.Error()
}

// newVerdict echoes every field the tree may examine so each verdict is
// self-describing
func newVerdict(order *types.OrderDetail) types.Verdict {
	return types.Verdict{
		OrderID:          order.OrderID,
		OrderStatus:      order.OrderStatus,
		ArticleID:        order.ArticleID,
		ArticleDOI:       order.ArticleDOI,
		JournalName:      order.JournalName,
		HasError:         order.HasError,
		ErrorCode:        order.ErrorCode,
		ErrorDescription: order.ErrorDescription,
		IsV041:           order.IsV041(),
		RevenueModel:     order.RevenueModel,
		PaymentMethod:    order.PaymentMethod,
		TotalCharged:     order.TotalCharged,
	}
}

func settle(v types.Verdict, step string, outcome types.Outcome, text string) types.Verdict {
	v.Step = step
	v.Outcome = outcome
	v.ReasonText = text
	return v
}

func codeOrUnknown(code string) string {
	if code == "" {
		return "(no code)"
	}
	return code
}
