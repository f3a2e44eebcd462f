// Package runner orchestrates one validation run: a bounded worker pool
// fans the input order ids out over per-order pipelines, and the verdicts
// land in a pre-sized buffer addressed by input position, so the report
// order always equals the input order no matter when each order finishes.
//
// A slow or failing order occupies only its own worker slot. Run-fatal
// errors (dead session, canceled run) stop the scheduling of new orders but
// let in-flight pipelines finish; the partial verdict list is still
// returned in input order, with never-run slots left zero.
//
// Summarize reduces a finished verdict list to the run statistics: totals
// per outcome and the block/review reasons grouped by frequency.
package runner
