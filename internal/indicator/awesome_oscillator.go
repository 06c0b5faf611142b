package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// awesomeOscillator is SMA(fast) - SMA(slow) of the bar median price.
type awesomeOscillator struct {
	spec Spec
	fast *window
	slow *window
}

func newAwesomeOscillator(spec Spec) (Indicator, error) {
	return &awesomeOscillator{
		spec: spec,
		fast: newWindow(spec.Fast),
		slow: newWindow(spec.Slow),
	}, nil
}

func (o *awesomeOscillator) Name() string {
	return o.spec.Key()
}

func (o *awesomeOscillator) Update(bar types.Bar) {
	median := bar.MedianPrice()
	o.fast.push(median)
	o.slow.push(median)
}

func (o *awesomeOscillator) Ready() bool {
	return o.fast.full() && o.slow.full()
}

func (o *awesomeOscillator) Values() map[string]float64 {
	if !o.Ready() {
		return single(math.NaN())
	}

	return single(o.fast.mean() - o.slow.mean())
}
