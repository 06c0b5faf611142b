package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// sma is the arithmetic mean of the last period closes.
type sma struct {
	spec   Spec
	closes *window
}

func newSMA(spec Spec) (Indicator, error) {
	return &sma{spec: spec, closes: newWindow(spec.Period)}, nil
}

func (s *sma) Name() string {
	return s.spec.Key()
}

func (s *sma) Update(bar types.Bar) {
	s.closes.push(bar.Close)
}

func (s *sma) Ready() bool {
	return s.closes.full()
}

func (s *sma) Values() map[string]float64 {
	if !s.Ready() {
		return single(math.NaN())
	}

	return single(s.closes.mean())
}

// wma weights the newest close by period and the oldest by 1.
type wma struct {
	spec   Spec
	closes *window
}

func newWMA(spec Spec) (Indicator, error) {
	return &wma{spec: spec, closes: newWindow(spec.Period)}, nil
}

func (w *wma) Name() string {
	return w.spec.Key()
}

func (w *wma) Update(bar types.Bar) {
	w.closes.push(bar.Close)
}

func (w *wma) Ready() bool {
	return w.closes.full()
}

func (w *wma) Values() map[string]float64 {
	if !w.Ready() {
		return single(math.NaN())
	}

	sum := 0.0
	weights := 0.0

	for i := 0; i < w.closes.size; i++ {
		weight := float64(i + 1)
		sum += w.closes.at(i) * weight
		weights += weight
	}

	return single(sum / weights)
}
