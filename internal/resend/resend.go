// Package resend drives the optional resend phase: a Selector picks which
// approved orders to resubmit, and the Coordinator performs exactly one
// backend resend call per selected order, recording success or failure
// independently per order. The Coordinator enforces the run's resend
// invariants: only approved orders can be selected, and an order that
// already resent successfully this run is never sent again.
package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/wppops/asat-validator/internal/gateway"
	"github.com/wppops/asat-validator/internal/logging"
	"github.com/wppops/asat-validator/pkg/types"
)

var (
	// ErrNotApproved rejects a selection containing an order whose verdict
	// does not permit resending
	ErrNotApproved = errors.New("order is not approved for resend")

	// ErrAlreadyResent rejects a selection that would resend an order
	// already successfully resent this run
	ErrAlreadyResent = errors.New("order was already resent this run")
)

// Coordinator resends approved orders through the gateway. Not safe for
// concurrent use; the resend phase runs sequentially after user
// confirmation.
type Coordinator struct {
	gw       gateway.Gateway
	log      *logging.RunLog
	approved map[string]bool
	sent     map[string]bool
}

// NewCoordinator builds a Coordinator over the run's approved verdicts.
// Non-approved verdicts in the slice are ignored.
func NewCoordinator(gw gateway.Gateway, verdicts []types.Verdict, log *logging.RunLog) *Coordinator {
	if log == nil {
		log = logging.Discard()
	}

	approved := make(map[string]bool)
	for _, v := range verdicts {
		if v.CanResend() {
			approved[v.OrderID] = true
		}
	}

	return &Coordinator{
		gw:       gw,
		log:      log,
		approved: approved,
		sent:     make(map[string]bool),
	}
}

// Resend resubmits the selected orders one by one. The whole selection is
// validated before the first call goes out: an unapproved order, an order
// already resent this run, or a duplicate inside the selection rejects the
// batch without sending anything. Per-order backend failures are recorded
// as outcomes and never abort the remaining orders.
func (c *Coordinator) Resend(ctx context.Context, selection []string) ([]types.ResendOutcome, error) {
	seen := make(map[string]bool, len(selection))
	for _, orderID := range selection {
		if !c.approved[orderID] {
			return nil, fmt.Errorf("%w: %s", ErrNotApproved, orderID)
		}
		if c.sent[orderID] || seen[orderID] {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyResent, orderID)
		}
		seen[orderID] = true
	}

	outcomes := make([]types.ResendOutcome, 0, len(selection))
	for _, orderID := range selection {
		if err := c.gw.Resend(ctx, orderID); err != nil {
			c.log.Warnf("resend failed for order %s: %v", orderID, err)
			outcomes = append(outcomes, types.ResendOutcome{
				OrderID:        orderID,
				FailureMessage: err.Error(),
			})
			continue
		}

		c.sent[orderID] = true
		c.log.Infof("order %s resent", orderID)
		outcomes = append(outcomes, types.ResendOutcome{OrderID: orderID, Success: true})
	}

	return outcomes, nil
}
