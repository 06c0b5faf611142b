package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// ichimoku computes the tenkan-sen and kijun-sen lines, each the midpoint of
// the highest high and lowest low over its period.
type ichimoku struct {
	spec        Spec
	tenkanHighs *window
	tenkanLows  *window
	kijunHighs  *window
	kijunLows   *window
}

func newIchimoku(spec Spec) (Indicator, error) {
	return &ichimoku{
		spec:        spec,
		tenkanHighs: newWindow(spec.Fast),
		tenkanLows:  newWindow(spec.Fast),
		kijunHighs:  newWindow(spec.Slow),
		kijunLows:   newWindow(spec.Slow),
	}, nil
}

func (i *ichimoku) Name() string {
	return i.spec.Key()
}

func (i *ichimoku) Update(bar types.Bar) {
	i.tenkanHighs.push(bar.High)
	i.tenkanLows.push(bar.Low)
	i.kijunHighs.push(bar.High)
	i.kijunLows.push(bar.Low)
}

func (i *ichimoku) Ready() bool {
	return i.tenkanHighs.full() && i.kijunHighs.full()
}

func (i *ichimoku) Values() map[string]float64 {
	return map[string]float64{
		FieldTenkan: midpoint(i.tenkanHighs, i.tenkanLows),
		FieldKijun:  midpoint(i.kijunHighs, i.kijunLows),
	}
}

func midpoint(highs, lows *window) float64 {
	if !highs.full() {
		return math.NaN()
	}

	return (highs.at(highs.argMax()) + lows.at(lows.argMin())) / 2
}
