package policy

import (
	"context"
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-signals/internal/indicator"
	"github.com/rxtech-lab/argo-signals/internal/types"
)

// bands reads the configured Bollinger bands from the snapshot.
type bands struct {
	spec indicator.Spec
}

func newBands(params BollingerParams) (bands, error) {
	spec := indicator.BollingerBands(params.Period, params.LowerDev, params.UpperDev)
	if err := spec.Validate(); err != nil {
		return bands{}, err
	}

	return bands{spec: spec}, nil
}

func (b bands) read(snapshot indicator.Snapshot) (lower, upper float64, ok bool) {
	lower = snapshot.Value(b.spec, indicator.FieldLower)
	upper = snapshot.Value(b.spec, indicator.FieldUpper)

	return lower, upper, !undefined(lower, upper)
}

// entryBelowLower is the shared entry rule: ENTER when flat and close is strictly below the lower band.
func (b bands) entryBelowLower(dc DecisionContext, lower, upper float64) types.Decision {
	d := types.Hold("waiting for lower band")
	if dc.Bar.Close < lower {
		d = enter(dc, fmt.Sprintf("close %.4f < lower band %.4f", dc.Bar.Close, lower))
	}

	return withStatus(d, dc, lower, dc.Bar.Close, upper)
}

// BollingerBand buys below the lower band and sells above the upper band.
type BollingerBand struct {
	params BollingerBandParams
	bands  bands
}

func NewBollingerBand(params BollingerBandParams) (*BollingerBand, error) {
	b, err := newBands(params.BollingerParams)
	if err != nil {
		return nil, err
	}

	return &BollingerBand{params: params, bands: b}, nil
}

func (p *BollingerBand) Name() string {
	return string(KindBollingerBand)
}

func (p *BollingerBand) Indicators() []indicator.Spec {
	return []indicator.Spec{p.bands.spec}
}

func (p *BollingerBand) Parameters() map[string]any {
	return mustMap(p.params)
}

func (p *BollingerBand) Decide(_ context.Context, dc DecisionContext) (types.Decision, error) {
	lower, upper, ok := p.bands.read(dc.Snapshot)
	if !ok {
		return types.Hold(warmupReason), nil
	}

	if !dc.Position.IsOpen {
		return p.bands.entryBelowLower(dc, lower, upper), nil
	}

	d := types.Hold("waiting for upper band")
	if dc.Bar.Close > upper {
		d = types.Exit(fmt.Sprintf("close %.4f > upper band %.4f", dc.Bar.Close, upper))
	}

	return withStatus(d, dc, lower, dc.Bar.Close, upper), nil
}

// BollingerStopLoss is BollingerBand with a stop-loss checked before the band exit.
type BollingerStopLoss struct {
	params BollingerStopLossParams
	bands  bands
}

func NewBollingerStopLoss(params BollingerStopLossParams) (*BollingerStopLoss, error) {
	b, err := newBands(params.BollingerParams)
	if err != nil {
		return nil, err
	}

	return &BollingerStopLoss{params: params, bands: b}, nil
}

func (p *BollingerStopLoss) Name() string {
	return string(KindBollingerStopLoss)
}

func (p *BollingerStopLoss) Indicators() []indicator.Spec {
	return []indicator.Spec{p.bands.spec}
}

func (p *BollingerStopLoss) Parameters() map[string]any {
	return mustMap(p.params)
}

func (p *BollingerStopLoss) Decide(_ context.Context, dc DecisionContext) (types.Decision, error) {
	lower, upper, ok := p.bands.read(dc.Snapshot)
	if !ok {
		return types.Hold(warmupReason), nil
	}

	if !dc.Position.IsOpen {
		return p.bands.entryBelowLower(dc, lower, upper), nil
	}

	closePrice := dc.Bar.Close
	floor := dc.Position.EntryPrice * (1 - p.params.StopLoss)

	var d types.Decision

	switch {
	case closePrice <= floor:
		d = types.Exit(types.OrderReasonStopLoss)
	case closePrice > upper:
		d = types.Exit(fmt.Sprintf("close %.4f > upper band %.4f", closePrice, upper))
	default:
		d = types.Hold("waiting for upper band")
	}

	return withStatus(d, dc, floor, closePrice, upper), nil
}

// BollingerDeadbandTrailing enters like BollingerBand and manages the open
// position in three zones relative to the entry price:
//
//	close <= entry*(1-stop_loss)                      stop-loss exit
//	entry*(1-stop_loss) < close <= entry*(1+deadband) deadband
//	close > entry*(1+deadband)                        trailing
//
// The trailing stop arms once a close has cleared the deadband. Until then the
// deadband holds unconditionally. Once armed, a close at or below
// high_water_mark*(1-trailing_stop_percent) exits from either upper zone.
type BollingerDeadbandTrailing struct {
	params BollingerDeadbandTrailingParams
	bands  bands
}

func NewBollingerDeadbandTrailing(params BollingerDeadbandTrailingParams) (*BollingerDeadbandTrailing, error) {
	b, err := newBands(params.BollingerParams)
	if err != nil {
		return nil, err
	}

	return &BollingerDeadbandTrailing{params: params, bands: b}, nil
}

func (p *BollingerDeadbandTrailing) Name() string {
	return string(KindBollingerDeadbandTrailing)
}

func (p *BollingerDeadbandTrailing) Indicators() []indicator.Spec {
	return []indicator.Spec{p.bands.spec}
}

func (p *BollingerDeadbandTrailing) Parameters() map[string]any {
	return mustMap(p.params)
}

func (p *BollingerDeadbandTrailing) Decide(_ context.Context, dc DecisionContext) (types.Decision, error) {
	lower, upper, ok := p.bands.read(dc.Snapshot)
	if !ok {
		return types.Hold(warmupReason), nil
	}

	if !dc.Position.IsOpen {
		return p.bands.entryBelowLower(dc, lower, upper), nil
	}

	closePrice := dc.Bar.Close
	entry := dc.Position.EntryPrice
	floor := entry * (1 - p.params.StopLoss)
	deadbandUpper := entry * (1 + p.params.Deadband)
	hwm := dc.Position.HighWaterMark

	if closePrice <= floor {
		return withStatus(types.Exit(types.OrderReasonStopLoss), dc, floor, closePrice, deadbandUpper), nil
	}

	if closePrice > deadbandUpper {
		var d types.Decision

		if closePrice > hwm {
			hwm = closePrice
		}

		level := hwm * (1 - p.params.TrailingStopPercent)
		if closePrice <= level {
			d = types.Exit(types.OrderReasonTrailingStop)
		} else {
			d = types.Hold(fmt.Sprintf("trailing, stop level %.4f", level))
		}

		if hwm > dc.Position.HighWaterMark {
			d = d.WithHighWaterMark(hwm)
		}

		return withStatus(d, dc, level, closePrice, hwm), nil
	}

	armed := hwm > deadbandUpper
	if armed {
		level := hwm * (1 - p.params.TrailingStopPercent)
		if closePrice <= level {
			return withStatus(types.Exit(types.OrderReasonTrailingStop), dc, level, closePrice, hwm), nil
		}
	}

	return withStatus(types.Hold("in deadband"), dc, floor, closePrice, deadbandUpper), nil
}

// TrailingStopOnly buys below the lower band and exits only on a trailing stop
// referenced to the highest close since entry.
type TrailingStopOnly struct {
	params TrailingStopOnlyParams
	bands  bands
}

func NewTrailingStopOnly(params TrailingStopOnlyParams) (*TrailingStopOnly, error) {
	b, err := newBands(params.BollingerParams)
	if err != nil {
		return nil, err
	}

	return &TrailingStopOnly{params: params, bands: b}, nil
}

func (p *TrailingStopOnly) Name() string {
	return string(KindTrailingStopOnly)
}

func (p *TrailingStopOnly) Indicators() []indicator.Spec {
	return []indicator.Spec{p.bands.spec}
}

func (p *TrailingStopOnly) Parameters() map[string]any {
	return mustMap(p.params)
}

func (p *TrailingStopOnly) Decide(_ context.Context, dc DecisionContext) (types.Decision, error) {
	lower, upper, ok := p.bands.read(dc.Snapshot)
	if !ok {
		return types.Hold(warmupReason), nil
	}

	if !dc.Position.IsOpen {
		return p.bands.entryBelowLower(dc, lower, upper), nil
	}

	closePrice := dc.Bar.Close
	hwm := math.Max(dc.Position.HighWaterMark, closePrice)
	level := hwm * (1 - p.params.TrailPercent)

	d := types.Hold(fmt.Sprintf("trailing, stop level %.4f", level))
	if closePrice <= level {
		d = types.Exit(types.OrderReasonTrailingStop)
	}

	if hwm > dc.Position.HighWaterMark {
		d = d.WithHighWaterMark(hwm)
	}

	return withStatus(d, dc, level, closePrice, hwm), nil
}
