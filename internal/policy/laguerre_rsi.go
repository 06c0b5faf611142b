package policy

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// LaguerreRSIThreshold buys when the Laguerre RSI drops below BuyThreshold
// and sells when it rises above SellThreshold.
type LaguerreRSIThreshold struct {
	params LaguerreRSIThresholdParams
	lrsi   indicator.Spec
}

func NewLaguerreRSIThreshold(params LaguerreRSIThresholdParams) (*LaguerreRSIThreshold, error) {
	spec := indicator.LaguerreRSI(params.Gamma, params.Period)
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &LaguerreRSIThreshold{params: params, lrsi: spec}, nil
}

func (p *LaguerreRSIThreshold) Name() string {
	return string(KindLaguerreRSIThreshold)
}

func (p *LaguerreRSIThreshold) Indicators() []indicator.Spec {
	return []indicator.Spec{p.lrsi}
}

func (p *LaguerreRSIThreshold) Parameters() map[string]any {
	return mustMap(p.params)
}

func (p *LaguerreRSIThreshold) Decide(_ context.Context, dc DecisionContext) (types.Decision, error) {
	value := dc.Snapshot.Value(p.lrsi, indicator.FieldValue)
	if undefined(value) {
		return types.Hold(warmupReason), nil
	}

	d := types.Hold(fmt.Sprintf("laguerre rsi %.4f", value))

	if !dc.Position.IsOpen {
		if value < p.params.BuyThreshold {
			d = enter(dc, fmt.Sprintf("laguerre rsi %.4f < %.4f", value, p.params.BuyThreshold))
		}
	} else if value > p.params.SellThreshold {
		d = types.Exit(fmt.Sprintf("laguerre rsi %.4f > %.4f", value, p.params.SellThreshold))
	}

	return withStatus(d, dc, p.params.BuyThreshold, value, p.params.SellThreshold), nil
}
