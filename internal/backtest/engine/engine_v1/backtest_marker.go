package engine

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/marker"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

var _ marker.Marker = (*BacktestMarker)(nil)

// BacktestMarker is the decision journal of one run. It annotates bars with
// what the driver did on them: decisions, fills, cancellations and skips.
type BacktestMarker struct {
	marks []types.Mark
}

// NewBacktestMarker creates an empty journal.
func NewBacktestMarker() *BacktestMarker {
	return &BacktestMarker{marks: []types.Mark{}}
}

// Mark records a raw mark.
func (m *BacktestMarker) Mark(mark types.Mark) {
	m.marks = append(m.marks, mark)
}

// MarkDecision records an ENTER or EXIT decision. ENTER is drawn as a green
// triangle and EXIT as a red one.
func (m *BacktestMarker) MarkDecision(bar types.Bar, decision types.Decision) {
	color := types.MarkColorGreen
	if decision.Intent == types.IntentExit {
		color = types.MarkColorRed
	}

	m.Mark(types.Mark{
		BarTime:  bar.Time,
		Color:    color,
		Shape:    types.MarkShapeTriangle,
		Title:    string(decision.Intent),
		Message:  decision.Reason,
		Category: types.MarkCategoryDecision,
		Decision: optional.Some(decision),
	})
}

// MarkFill records a filled order on the bar it was filled on.
func (m *BacktestMarker) MarkFill(bar types.Bar, order types.Order) {
	color := types.MarkColorGreen
	if order.Side == types.PurchaseTypeSell {
		color = types.MarkColorRed
	}

	m.Mark(types.Mark{
		BarTime:  bar.Time,
		Color:    color,
		Shape:    types.MarkShapeCircle,
		Title:    fmt.Sprintf("%s filled", order.Side),
		Message:  fmt.Sprintf("%.8f @ %.8f fee %.8f", order.RequestedSize, order.FillPrice.TakeOr(0), order.Fee),
		Category: types.MarkCategoryFill,
		Decision: optional.None[types.Decision](),
	})
}

// MarkCancel records a cancelled or rejected order.
func (m *BacktestMarker) MarkCancel(bar types.Bar, order types.Order) {
	m.Mark(types.Mark{
		BarTime:  bar.Time,
		Color:    types.MarkColorYellow,
		Shape:    types.MarkShapeSquare,
		Title:    fmt.Sprintf("%s %s", order.Side, order.Status),
		Message:  order.Reason,
		Category: types.MarkCategoryCancel,
		Decision: optional.None[types.Decision](),
	})
}

// MarkStale records a bar whose decision was skipped by the live-lag filter.
func (m *BacktestMarker) MarkStale(bar types.Bar, lagSeconds float64) {
	m.Mark(types.Mark{
		BarTime:  bar.Time,
		Color:    types.MarkColorYellow,
		Shape:    types.MarkShapeSquare,
		Title:    "stale",
		Message:  fmt.Sprintf("bar is %.0fs old", lagSeconds),
		Category: types.MarkCategoryStale,
		Decision: optional.None[types.Decision](),
	})
}

// MarkSkip records a decision that was dropped, such as a protocol violation
// in live mode.
func (m *BacktestMarker) MarkSkip(bar types.Bar, decision types.Decision, reason string) {
	m.Mark(types.Mark{
		BarTime:  bar.Time,
		Color:    types.MarkColorYellow,
		Shape:    types.MarkShapeSquare,
		Title:    "skipped",
		Message:  reason,
		Category: types.MarkCategorySkip,
		Decision: optional.Some(decision),
	})
}

// GetMarks returns all recorded marks in the order they were made.
func (m *BacktestMarker) GetMarks() []types.Mark {
	return append([]types.Mark{}, m.marks...)
}

// Cleanup drops every recorded mark.
func (m *BacktestMarker) Cleanup() {
	m.marks = m.marks[:0]
}
