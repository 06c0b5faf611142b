package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// atr is the Average True Range with Wilder's smoothing. The true range needs
// the previous close, so the first bar only primes the state.
type atr struct {
	spec      Spec
	prevClose float64
	ranges    int
	value     float64
}

func newATR(spec Spec) (Indicator, error) {
	return &atr{spec: spec, prevClose: math.NaN()}, nil
}

func (a *atr) Name() string {
	return a.spec.Key()
}

func (a *atr) Update(bar types.Bar) {
	if math.IsNaN(a.prevClose) {
		a.prevClose = bar.Close

		return
	}

	trueRange := math.Max(bar.High-bar.Low, math.Max(math.Abs(bar.High-a.prevClose), math.Abs(bar.Low-a.prevClose)))
	a.prevClose = bar.Close

	period := float64(a.spec.Period)
	a.ranges++

	switch {
	case a.ranges < a.spec.Period:
		a.value += trueRange
	case a.ranges == a.spec.Period:
		a.value = (a.value + trueRange) / period
	default:
		a.value = (a.value*(period-1) + trueRange) / period
	}
}

func (a *atr) Ready() bool {
	return a.ranges >= a.spec.Period
}

func (a *atr) Values() map[string]float64 {
	if !a.Ready() {
		return single(math.NaN())
	}

	return single(a.value)
}
