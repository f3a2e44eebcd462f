// Package pipeline runs the per-order fetch→decide chain: order detail
// first, then exactly the secondary lookups the decision tree asks for.
// Steps within one order are strictly sequential because each step's
// necessity depends on the previous step's result.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/wppops/asat-validator/internal/gateway"
	"github.com/wppops/asat-validator/internal/rules"
	"github.com/wppops/asat-validator/pkg/types"
)

// Pipeline evaluates single orders against the backend
type Pipeline struct {
	gw gateway.Gateway
}

// New creates a Pipeline over the given gateway
func New(gw gateway.Gateway) *Pipeline {
	return &Pipeline{gw: gw}
}

// Run produces the verdict for one order. The error return is reserved for
// run-fatal conditions — a dead session or a canceled run; every per-order
// failure folds into the verdict instead, so one bad order never stops the
// batch.
func (p *Pipeline) Run(ctx context.Context, orderID string) (types.Verdict, error) {
	detail, err := p.gw.OrderDetail(ctx, orderID)
	if err != nil {
		if fatal(err) {
			return types.Verdict{}, err
		}
		return rules.FetchBlocked(orderID, err), nil
	}

	// Fatal errors inside a provider must escape the engine, which folds
	// every provider error into a blocked verdict; capture them here
	var abort error
	verdict := rules.Evaluate(detail, rules.Providers{
		Siblings: func() ([]types.SiblingOrder, error) {
			siblings, err := p.gw.SiblingOrders(ctx, detail.ArticleID, orderID)
			if err != nil && fatal(err) {
				abort = err
			}
			return siblings, err
		},
		CreditMemo: func(canceled []types.SiblingOrder) (types.CreditMemoStatus, error) {
			return p.creditMemo(ctx, canceled, &abort)
		},
	})
	if abort != nil {
		return types.Verdict{}, abort
	}

	return verdict, nil
}

// creditMemo checks canceled siblings in order until one carries a credit
// memo. The first hit wins; a miss across all siblings is a clean not-found.
func (p *Pipeline) creditMemo(ctx context.Context, canceled []types.SiblingOrder, abort *error) (types.CreditMemoStatus, error) {
	for _, sibling := range canceled {
		found, err := p.gw.HasCreditMemo(ctx, sibling.OrderID)
		if err != nil {
			if fatal(err) {
				*abort = err
			}
			return types.CreditMemoStatus{}, fmt.Errorf("sibling %s: %w", sibling.OrderID, err)
		}
		if found {
			return types.CreditMemoStatus{Found: true, OrderID: sibling.OrderID}, nil
		}
	}

	return types.CreditMemoStatus{}, nil
}

// fatal reports whether err must halt the whole run instead of blocking one
// order: a rejected session cannot recover, and a canceled run must stop
// recording verdicts. Per-call timeouts stay per-order.
func fatal(err error) bool {
	return errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, context.Canceled)
}
