package marker

import "github.com/rxtech-lab/argo-signals/internal/types"

// Marker journals the bar-level events of a run: decisions, order outcomes
// and bars that were skipped.
type Marker interface {
	// MarkDecision records a non-HOLD decision on bar.
	MarkDecision(bar types.Bar, decision types.Decision)
	// MarkFill records a filled order.
	MarkFill(bar types.Bar, order types.Order)
	// MarkCancel records a cancelled or rejected order.
	MarkCancel(bar types.Bar, order types.Order)
	// MarkStale records a bar older than the live lag tolerance.
	MarkStale(bar types.Bar, lagSeconds float64)
	// MarkSkip records a decision that could not be submitted.
	MarkSkip(bar types.Bar, decision types.Decision, reason string)
	// GetMarks returns all marks in the order they were recorded.
	GetMarks() []types.Mark
}
