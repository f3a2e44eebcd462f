package resend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wppops/asat-validator/pkg/types"
)

// mockGateway counts resend calls per order and fails the ids listed in
// failWith
type mockGateway struct {
	failWith map[string]error
	calls    map[string]int
	mu       sync.Mutex
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		failWith: make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (m *mockGateway) OrderDetail(context.Context, string) (*types.OrderDetail, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) SiblingOrders(context.Context, string, string) ([]types.SiblingOrder, error) {
	return nil, errors.New("not implemented")
}

func (m *mockGateway) HasCreditMemo(context.Context, string) (bool, error) {
	return false, errors.New("not implemented")
}

func (m *mockGateway) Resend(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[orderID]++
	return m.failWith[orderID]
}

func approvedVerdicts(ids ...string) []types.Verdict {
	verdicts := make([]types.Verdict, len(ids))
	for i, id := range ids {
		verdicts[i] = types.Verdict{
			OrderID: id,
			Outcome: types.Approve(),
			Step:    types.StepRevenue,
		}
	}
	return verdicts
}

func TestResend_OneCallPerOrder(t *testing.T) {
	gw := newMockGateway()
	c := NewCoordinator(gw, approvedVerdicts("a", "b", "c"), nil)

	outcomes, err := c.Resend(context.Background(), []string{"a", "c"})

	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Success)
	assert.True(t, outcomes[1].Success)
	assert.Equal(t, 1, gw.calls["a"])
	assert.Zero(t, gw.calls["b"])
	assert.Equal(t, 1, gw.calls["c"])
}

func TestResend_FailureDoesNotAbortBatch(t *testing.T) {
	gw := newMockGateway()
	gw.failWith["b"] = errors.New("status 422: not resendable")
	c := NewCoordinator(gw, approvedVerdicts("a", "b", "c"), nil)

	outcomes, err := c.Resend(context.Background(), []string{"a", "b", "c"})

	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
	assert.Contains(t, outcomes[1].FailureMessage, "not resendable")
	assert.True(t, outcomes[2].Success, "orders after a failure still go out")
}

func TestResend_RejectsNonApproved(t *testing.T) {
	gw := newMockGateway()
	verdicts := append(approvedVerdicts("a"), types.Verdict{
		OrderID: "blocked",
		Outcome: types.Block("Order canceled"),
		Step:    types.StepCanceled,
	})
	c := NewCoordinator(gw, verdicts, nil)

	_, err := c.Resend(context.Background(), []string{"a", "blocked"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotApproved)
	assert.Empty(t, gw.calls, "a rejected selection must send nothing")
}

func TestResend_RejectsUnknownOrder(t *testing.T) {
	gw := newMockGateway()
	c := NewCoordinator(gw, approvedVerdicts("a"), nil)

	_, err := c.Resend(context.Background(), []string{"never-seen"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestResend_RejectsDoubleSelectionAcrossCalls(t *testing.T) {
	gw := newMockGateway()
	c := NewCoordinator(gw, approvedVerdicts("a", "b"), nil)

	_, err := c.Resend(context.Background(), []string{"a"})
	require.NoError(t, err)

	_, err = c.Resend(context.Background(), []string{"a", "b"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyResent)
	assert.Equal(t, 1, gw.calls["a"], "an already-sent order is never resent")
	assert.Zero(t, gw.calls["b"], "rejection happens before anything is sent")
}

func TestResend_FailedOrderMayRetryNextSelection(t *testing.T) {
	gw := newMockGateway()
	gw.failWith["a"] = errors.New("transient backend hiccup")
	c := NewCoordinator(gw, approvedVerdicts("a"), nil)

	outcomes, err := c.Resend(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.False(t, outcomes[0].Success)

	// Only successful sends are pinned; a failed one may be selected again
	delete(gw.failWith, "a")
	outcomes, err = c.Resend(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.True(t, outcomes[0].Success)
	assert.Equal(t, 2, gw.calls["a"])
}

func TestResend_RejectsDuplicateWithinSelection(t *testing.T) {
	gw := newMockGateway()
	c := NewCoordinator(gw, approvedVerdicts("a"), nil)

	_, err := c.Resend(context.Background(), []string{"a", "a"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyResent)
	assert.Empty(t, gw.calls)
}

func TestResend_EmptySelection(t *testing.T) {
	gw := newMockGateway()
	c := NewCoordinator(gw, approvedVerdicts("a"), nil)

	outcomes, err := c.Resend(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, gw.calls)
}
