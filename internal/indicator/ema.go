package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// emaState is an exponential moving average over an arbitrary input series.
// It is seeded with the simple mean of the first period samples and then
// smoothed with alpha = 2 / (period + 1).
type emaState struct {
	period int
	alpha  float64
	count  int
	seed   float64
	value  float64
}

func newEMAState(period int) *emaState {
	return &emaState{
		period: period,
		alpha:  2.0 / float64(period+1),
		value:  math.NaN(),
	}
}

// push feeds the next sample and returns the current average, NaN while warming up.
func (e *emaState) push(v float64) float64 {
	e.count++

	switch {
	case e.count < e.period:
		e.seed += v
	case e.count == e.period:
		e.seed += v
		e.value = e.seed / float64(e.period)
	default:
		e.value = (v-e.value)*e.alpha + e.value
	}

	return e.value
}

func (e *emaState) ready() bool {
	return e.count >= e.period
}

type ema struct {
	spec  Spec
	state *emaState
}

func newEMA(spec Spec) (Indicator, error) {
	return &ema{spec: spec, state: newEMAState(spec.Period)}, nil
}

func (e *ema) Name() string {
	return e.spec.Key()
}

func (e *ema) Update(bar types.Bar) {
	e.state.push(bar.Close)
}

func (e *ema) Ready() bool {
	return e.state.ready()
}

func (e *ema) Values() map[string]float64 {
	return single(e.state.value)
}

// tema is the triple exponential moving average 3*e1 - 3*e2 + e3, where each
// stage is an EMA of the previous one.
type tema struct {
	spec  Spec
	e1    *emaState
	e2    *emaState
	e3    *emaState
	value float64
}

func newTEMA(spec Spec) (Indicator, error) {
	return &tema{
		spec:  spec,
		e1:    newEMAState(spec.Period),
		e2:    newEMAState(spec.Period),
		e3:    newEMAState(spec.Period),
		value: math.NaN(),
	}, nil
}

func (t *tema) Name() string {
	return t.spec.Key()
}

func (t *tema) Update(bar types.Bar) {
	v1 := t.e1.push(bar.Close)
	if !t.e1.ready() {
		return
	}

	v2 := t.e2.push(v1)
	if !t.e2.ready() {
		return
	}

	v3 := t.e3.push(v2)
	if !t.e3.ready() {
		return
	}

	t.value = 3*v1 - 3*v2 + v3
}

func (t *tema) Ready() bool {
	return t.e3.ready()
}

func (t *tema) Values() map[string]float64 {
	return single(t.value)
}
