package resend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wppops/asat-validator/pkg/types"
)

func consoleSelect(t *testing.T, script string, approved []types.Verdict) ([]string, string, error) {
	t.Helper()

	var out bytes.Buffer
	selector := &ConsoleSelector{In: strings.NewReader(script), Out: &out}
	selection, err := selector.Select(approved)
	return selection, out.String(), err
}

func TestConsoleSelector_All(t *testing.T) {
	selection, out, err := consoleSelect(t, "all\ny\n", approvedVerdicts("a", "b", "c"))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, selection)
	assert.Contains(t, out, "3 order(s) approved for resend")
	assert.Contains(t, out, "Resend 3 order(s)?")
}

func TestConsoleSelector_AllDeclinedReturnsToMenu(t *testing.T) {
	selection, _, err := consoleSelect(t, "all\nn\nnone\n", approvedVerdicts("a", "b"))

	require.NoError(t, err)
	assert.Empty(t, selection)
}

func TestConsoleSelector_None(t *testing.T) {
	selection, _, err := consoleSelect(t, "none\n", approvedVerdicts("a"))

	require.NoError(t, err)
	assert.Empty(t, selection)
}

func TestConsoleSelector_Indices(t *testing.T) {
	selection, _, err := consoleSelect(t, "3, 1\ny\n", approvedVerdicts("a", "b", "c"))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, selection)
}

func TestConsoleSelector_InvalidInputReprompts(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "garbage", script: "resend everything\nnone\n", want: "not a selection"},
		{name: "out of range", script: "0\nnone\n", want: "out of range"},
		{name: "beyond list", script: "5\nnone\n", want: "out of range"},
		{name: "duplicate index", script: "1,1\nnone\n", want: "selected twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection, out, err := consoleSelect(t, tt.script, approvedVerdicts("a", "b"))

			require.NoError(t, err)
			assert.Empty(t, selection)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestConsoleSelector_ListReprints(t *testing.T) {
	_, out, err := consoleSelect(t, "list\nnone\n", approvedVerdicts("a", "b"))

	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "2 order(s) approved for resend"))
}

func TestConsoleSelector_Quit(t *testing.T) {
	selection, _, err := consoleSelect(t, "quit\n", approvedVerdicts("a"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Empty(t, selection)
}

func TestConsoleSelector_EOFQuits(t *testing.T) {
	_, _, err := consoleSelect(t, "", approvedVerdicts("a"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQuit)
}

func TestConsoleSelector_ListsOrderContext(t *testing.T) {
	verdicts := approvedVerdicts("400100200")
	verdicts[0].OrderStatus = "Completed"
	verdicts[0].RevenueModel = types.RevenueModelOA
	verdicts[0].PaymentMethod = types.PaymentMethodInvoice
	verdicts[0].ReasonText = "OA + Invoice with totalChargedAmount = 2500 - can resend"

	_, out, err := consoleSelect(t, "none\n", verdicts)

	require.NoError(t, err)
	assert.Contains(t, out, "400100200")
	assert.Contains(t, out, "status=Completed")
	assert.Contains(t, out, "revenue=OA")
	assert.Contains(t, out, "can resend")
}

func TestNoneSelector(t *testing.T) {
	selection, err := NoneSelector{}.Select(approvedVerdicts("a", "b"))

	require.NoError(t, err)
	assert.Empty(t, selection)
}

func TestStaticSelector(t *testing.T) {
	selection, err := StaticSelector{"b", "a"}.Select(approvedVerdicts("a", "b", "c"))

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, selection)
}
