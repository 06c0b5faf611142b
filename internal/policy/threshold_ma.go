package policy

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// ThresholdMA buys a dip of BuyThreshold below a moving average and sells a
// gain of SellThreshold above the entry price, with an optional stop-loss.
type ThresholdMA struct {
	params ThresholdMAParams
	ma     indicator.Spec
}

func NewThresholdMA(params ThresholdMAParams) (*ThresholdMA, error) {
	ma, err := indicator.MovingAverage(params.MAType, params.Period)
	if err != nil {
		return nil, err
	}

	if err := ma.Validate(); err != nil {
		return nil, err
	}

	return &ThresholdMA{params: params, ma: ma}, nil
}

func (p *ThresholdMA) Name() string {
	return string(KindThresholdMA)
}

func (p *ThresholdMA) Indicators() []indicator.Spec {
	return []indicator.Spec{p.ma}
}

func (p *ThresholdMA) Parameters() map[string]any {
	return mustMap(p.params)
}

func (p *ThresholdMA) Decide(_ context.Context, dc DecisionContext) (types.Decision, error) {
	ma := dc.Snapshot.Value(p.ma, indicator.FieldValue)
	if undefined(ma) {
		return types.Hold(warmupReason), nil
	}

	closePrice := dc.Bar.Close
	trigger := ma * (1 - p.params.BuyThreshold)

	if !dc.Position.IsOpen {
		d := types.Hold("waiting for dip")
		if closePrice <= trigger {
			d = enter(dc, fmt.Sprintf("close %.4f <= trigger %.4f", closePrice, trigger))
		}

		return withStatus(d, dc, trigger, closePrice, ma), nil
	}

	entry := dc.Position.EntryPrice
	floor := entry * (1 - p.params.StopLoss)
	target := entry * (1 + p.params.SellThreshold)

	var d types.Decision

	switch {
	case p.params.StopLoss > 0 && closePrice <= floor:
		d = types.Exit(types.OrderReasonStopLoss)
	case closePrice >= target:
		d = types.Exit(types.OrderReasonTakeProfit)
	default:
		d = types.Hold("waiting for target")
	}

	return withStatus(d, dc, floor, closePrice, target), nil
}
