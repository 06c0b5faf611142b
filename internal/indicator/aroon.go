package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// aroon measures how many bars ago the highest high and the lowest low of the
// last period+1 bars occurred, scaled to [0, 100].
type aroon struct {
	spec  Spec
	highs *window
	lows  *window
}

func newAroon(spec Spec) (Indicator, error) {
	return &aroon{
		spec:  spec,
		highs: newWindow(spec.Period + 1),
		lows:  newWindow(spec.Period + 1),
	}, nil
}

func (a *aroon) Name() string {
	return a.spec.Key()
}

func (a *aroon) Update(bar types.Bar) {
	a.highs.push(bar.High)
	a.lows.push(bar.Low)
}

func (a *aroon) Ready() bool {
	return a.highs.full()
}

func (a *aroon) Values() map[string]float64 {
	if !a.Ready() {
		return map[string]float64{FieldAroonUp: math.NaN(), FieldAroonDown: math.NaN()}
	}

	period := float64(a.spec.Period)
	sinceHigh := float64(a.spec.Period - a.highs.argMax())
	sinceLow := float64(a.spec.Period - a.lows.argMin())

	return map[string]float64{
		FieldAroonUp:   100 * (period - sinceHigh) / period,
		FieldAroonDown: 100 * (period - sinceLow) / period,
	}
}
