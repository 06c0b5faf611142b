// Package policy implements the signal policies: stateless decision functions
// that map the current bar, indicator snapshot and position to an intent.
package policy

import (
	"context"
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

type Kind string

const (
	KindThresholdMA               Kind = "threshold_ma"
	KindBollingerBand             Kind = "bollinger_band"
	KindBollingerStopLoss         Kind = "bollinger_stop_loss"
	KindBollingerDeadbandTrailing Kind = "bollinger_deadband_trailing"
	KindTrailingStopOnly          Kind = "trailing_stop_only"
	KindExternalScoreThreshold    Kind = "external_score_threshold"
	KindLaguerreRSIThreshold      Kind = "laguerre_rsi_threshold"
)

// Policy decides what to do on each bar. Implementations hold only their
// immutable parameters; all run state arrives through DecisionContext.
type Policy interface {
	// Name returns the policy kind.
	Name() string
	// Indicators lists the indicators the pipeline must compute for Decide.
	Indicators() []indicator.Spec
	// Parameters returns the effective parameters, defaults included.
	Parameters() map[string]any
	// Decide returns the intent for the current bar.
	Decide(ctx context.Context, dc DecisionContext) (types.Decision, error)
}

// DecisionContext is everything a policy may look at for one bar.
type DecisionContext struct {
	Bar      types.Bar
	Snapshot indicator.Snapshot
	Position types.PositionState
	// Cash is the broker's available cash.
	Cash   float64
	Sizing Sizing
	// Verbose asks the policy to render a status gauge into the decision.
	Verbose bool
}

// Sizing controls how large an entry may be.
type Sizing struct {
	// SafetyFraction scales the affordable quantity down to leave room for
	// commission and rounding.
	SafetyFraction float64 `yaml:"safety_fraction" json:"safety_fraction"`
	// MinOrder is the minimum cash required to place an entry.
	MinOrder float64 `yaml:"min_order" json:"min_order"`
}

const DefaultSafetyFraction = 0.95

func DefaultSizing() Sizing {
	return Sizing{SafetyFraction: DefaultSafetyFraction}
}

// EntrySize is (cash / price) x SafetyFraction.
func (s Sizing) EntrySize(cash, price float64) float64 {
	if price <= 0 || cash <= 0 {
		return 0
	}

	return cash / price * s.SafetyFraction
}

// enter returns an ENTER sized from dc, or HOLD when cash is below the minimum order.
func enter(dc DecisionContext, reason string) types.Decision {
	if dc.Cash < dc.Sizing.MinOrder {
		return types.Hold(fmt.Sprintf("cash %.4f below minimum order %.4f", dc.Cash, dc.Sizing.MinOrder))
	}

	size := dc.Sizing.EntrySize(dc.Cash, dc.Bar.Close)
	if size <= 0 {
		return types.Hold("nothing affordable")
	}

	return types.Enter(size, reason)
}

func undefined(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}

	return false
}

const warmupReason = "indicators warming up"

// withStatus renders a gauge of current between low and high when the run is verbose.
func withStatus(d types.Decision, dc DecisionContext, low, current, high float64) types.Decision {
	if !dc.Verbose {
		return d
	}

	if dc.Position.IsOpen {
		pnl := (dc.Bar.Close - dc.Position.EntryPrice) * dc.Position.Size
		pnlPct := 0.0

		if dc.Position.EntryPrice != 0 {
			pnlPct = (dc.Bar.Close/dc.Position.EntryPrice - 1) * 100
		}

		d.Status = fmt.Sprintf("Waiting SELL: %s | P/L: %8.4f (%6.2f%%)", StatusLine(low, current, high, statusWidth), pnl, pnlPct)
	} else {
		d.Status = fmt.Sprintf("Waiting BUY : %s |", StatusLine(low, current, high, statusWidth))
	}

	return d
}
