package resend

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wppops/asat-validator/pkg/types"
)

// ErrQuit signals that the operator chose to leave the resend menu without
// selecting anything
var ErrQuit = errors.New("resend selection aborted")

// Selector chooses which approved orders to resend. Implementations receive
// only approved verdicts.
type Selector interface {
	Select(approved []types.Verdict) ([]string, error)
}

// NoneSelector selects nothing; it backs the fully automated mode
type NoneSelector struct{}

// Select implements Selector
func (NoneSelector) Select([]types.Verdict) ([]string, error) {
	return nil, nil
}

// StaticSelector selects a fixed id list regardless of the approved set.
// The Coordinator still rejects ids outside it.
type StaticSelector []string

// Select implements Selector
func (s StaticSelector) Select([]types.Verdict) ([]string, error) {
	return s, nil
}

// ConsoleSelector runs the interactive resend menu: the approved orders are
// listed with 1-based indices, and the operator answers with "all", "none",
// "list" (reprint), "quit", or a comma-separated index subset. "all" and
// index subsets require a y/N confirmation; declining returns to the menu.
// Unrecognized input re-prompts, it never aborts.
type ConsoleSelector struct {
	In  io.Reader
	Out io.Writer
}

// Select implements Selector
func (c *ConsoleSelector) Select(approved []types.Verdict) ([]string, error) {
	scanner := bufio.NewScanner(c.In)
	c.printList(approved)

	for {
		fmt.Fprintf(c.Out, "\nResend [all | none | list | quit | indices e.g. 1,3]: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("read selection: %w", err)
			}
			// Input closed under the menu counts as quitting
			return nil, ErrQuit
		}

		switch answer := strings.ToLower(strings.TrimSpace(scanner.Text())); answer {
		case "all", "a":
			selection := make([]string, len(approved))
			for i, v := range approved {
				selection[i] = v.OrderID
			}
			if c.confirm(scanner, len(selection)) {
				return selection, nil
			}

		case "none", "n", "":
			return nil, nil

		case "list", "l":
			c.printList(approved)

		case "quit", "q":
			return nil, ErrQuit

		default:
			selection, err := pickByIndex(approved, answer)
			if err != nil {
				fmt.Fprintf(c.Out, "%v\n", err)
				continue
			}
			if c.confirm(scanner, len(selection)) {
				return selection, nil
			}
		}
	}
}

func (c *ConsoleSelector) printList(approved []types.Verdict) {
	fmt.Fprintf(c.Out, "\n%d order(s) approved for resend:\n", len(approved))
	for i, v := range approved {
		fmt.Fprintf(c.Out, "  %3d. %s  status=%s revenue=%s payment=%s\n       %s\n",
			i+1, v.OrderID, v.OrderStatus, v.RevenueModel, v.PaymentMethod, v.ReasonText)
	}
}

// confirm asks for an explicit yes; anything else declines
func (c *ConsoleSelector) confirm(scanner *bufio.Scanner, n int) bool {
	fmt.Fprintf(c.Out, "Resend %d order(s)? [y/N]: ", n)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// pickByIndex parses a comma-separated list of 1-based indices into order
// ids. Out-of-range and duplicate indices are rejected; the selection keeps
// list order.
func pickByIndex(approved []types.Verdict, answer string) ([]string, error) {
	parts := strings.Split(answer, ",")
	indices := make([]int, 0, len(parts))
	seen := make(map[int]bool, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("not a selection: %q", part)
		}
		if idx < 1 || idx > len(approved) {
			return nil, fmt.Errorf("index %d out of range 1-%d", idx, len(approved))
		}
		if seen[idx] {
			return nil, fmt.Errorf("index %d selected twice", idx)
		}
		seen[idx] = true
		indices = append(indices, idx)
	}

	sort.Ints(indices)
	selection := make([]string, len(indices))
	for i, idx := range indices {
		selection[i] = approved[idx-1].OrderID
	}
	return selection, nil
}
