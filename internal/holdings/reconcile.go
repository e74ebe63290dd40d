// Package holdings compares consecutive holdings snapshots of a fund and
// annotates each constituent with its weight change.
package holdings

import (
	"fmt"
	"math"

	"github.com/seenimoa/etftracker/pkg/models"
)

// Display markers written into ReconciledHolding.Change.
const (
	MarkerUnchanged = "-"
	MarkerNew       = "🆕新進"
	MarkerRemoved   = "❌移出"
	increasePrefix  = "🔺"
	decreasePrefix  = "🔻"
)

// Threshold is the largest absolute weight delta, in percentage points,
// still reported as unchanged.
const Threshold = 0.001

// RemovedPolicy decides what happens to constituents that were in the
// prior snapshot but are missing from the new one.
type RemovedPolicy string

const (
	// DropRemoved omits them from the result.
	DropRemoved RemovedPolicy = "drop"
	// MarkRemoved appends them after the current holdings with weight 0.
	MarkRemoved RemovedPolicy = "mark"
)

// ParseRemovedPolicy maps a config value to a policy; anything other than
// "mark" selects DropRemoved.
func ParseRemovedPolicy(s string) RemovedPolicy {
	if RemovedPolicy(s) == MarkRemoved {
		return MarkRemoved
	}
	return DropRemoved
}

// Reconcile annotates current against prior. Every entry of current appears
// exactly once in the result, in its original order. If prior lists a stock
// more than once the last weight wins.
func Reconcile(current, prior []models.HoldingEntry, policy RemovedPolicy) []models.ReconciledHolding {
	old := make(map[string]float64, len(prior))
	for _, h := range prior {
		old[h.Stock] = h.Percent
	}

	out := make([]models.ReconciledHolding, 0, len(current))
	seen := make(map[string]bool, len(current))
	for _, h := range current {
		seen[h.Stock] = true
		r := models.ReconciledHolding{Stock: h.Stock, Percent: h.Percent}

		prev, ok := old[h.Stock]
		if !ok {
			r.Change = MarkerNew
			r.ChangeVal = h.Percent
			out = append(out, r)
			continue
		}

		r.Change, r.ChangeVal = Delta(h.Percent, prev)
		out = append(out, r)
	}

	if policy == MarkRemoved {
		for _, h := range prior {
			if seen[h.Stock] {
				continue
			}
			// Guard against duplicate prior rows producing duplicate removals.
			seen[h.Stock] = true
			out = append(out, models.ReconciledHolding{
				Stock:     h.Stock,
				Percent:   0,
				Change:    MarkerRemoved,
				ChangeVal: -old[h.Stock],
			})
		}
	}

	return out
}

// Delta returns the display marker and signed delta for a weight moving
// from prev to curr. Deltas within Threshold collapse to (MarkerUnchanged, 0).
func Delta(curr, prev float64) (string, float64) {
	diff := curr - prev
	if math.Abs(diff) <= Threshold {
		return MarkerUnchanged, 0
	}
	if diff > 0 {
		return fmt.Sprintf("%s%.2f%%", increasePrefix, diff), diff
	}
	return fmt.Sprintf("%s%.2f%%", decreasePrefix, math.Abs(diff)), diff
}

// Summary counts reconciled holdings by kind of change.
type Summary struct {
	New       int
	Increased int
	Decreased int
	Unchanged int
	Removed   int
}

// Summarize tallies the change markers of rs.
func Summarize(rs []models.ReconciledHolding) Summary {
	var s Summary
	for _, r := range rs {
		switch {
		case r.Change == MarkerNew:
			s.New++
		case r.Change == MarkerRemoved:
			s.Removed++
		case r.ChangeVal > 0:
			s.Increased++
		case r.ChangeVal < 0:
			s.Decreased++
		default:
			s.Unchanged++
		}
	}
	return s
}

// Changed reports whether r differs from the prior snapshot.
func Changed(r models.ReconciledHolding) bool {
	return r.Change != MarkerUnchanged
}
