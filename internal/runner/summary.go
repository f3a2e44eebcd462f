package runner

import (
	"sort"

	"github.com/wppops/asat-validator/pkg/types"
)

// ReasonCount is one grouped block/review reason with its frequency
type ReasonCount struct {
	Reason string
	Count  int
}

// Summary contains the aggregate statistics for one validation run
type Summary struct {
	Total    int // Orders that actually received a verdict
	Approved int
	Blocked  int
	Review   int
	Reasons  []ReasonCount // Block/review reasons, most frequent first
}

// Summarize folds the verdict list into run statistics. It runs once, after
// the pool drains, so there is no partial aggregation to race against.
// Slots that never received a verdict (empty Step, after a fatal abort) are
// not counted: the summary reflects exactly the orders evaluated. Reasons
// sort by descending count; ties keep first-seen order.
func Summarize(verdicts []types.Verdict) Summary {
	var s Summary
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for _, v := range verdicts {
		if v.Step == "" {
			continue
		}
		s.Total++

		switch v.Outcome.Kind {
		case types.OutcomeApprove:
			s.Approved++
			continue
		case types.OutcomeBlock:
			s.Blocked++
		case types.OutcomeViaxReview:
			s.Review++
		}

		if _, seen := counts[v.Outcome.Reason]; !seen {
			firstSeen[v.Outcome.Reason] = len(firstSeen)
		}
		counts[v.Outcome.Reason]++
	}

	s.Reasons = make([]ReasonCount, 0, len(counts))
	for reason, count := range counts {
		s.Reasons = append(s.Reasons, ReasonCount{Reason: reason, Count: count})
	}
	sort.SliceStable(s.Reasons, func(i, j int) bool {
		if s.Reasons[i].Count != s.Reasons[j].Count {
			return s.Reasons[i].Count > s.Reasons[j].Count
		}
		return firstSeen[s.Reasons[i].Reason] < firstSeen[s.Reasons[j].Reason]
	})

	return s
}
