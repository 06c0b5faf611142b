package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// stdDev is the population standard deviation of the last period closes.
type stdDev struct {
	spec   Spec
	closes *window
}

func newStdDev(spec Spec) (Indicator, error) {
	return &stdDev{spec: spec, closes: newWindow(spec.Period)}, nil
}

func (s *stdDev) Name() string {
	return s.spec.Key()
}

func (s *stdDev) Update(bar types.Bar) {
	s.closes.push(bar.Close)
}

func (s *stdDev) Ready() bool {
	return s.closes.full()
}

func (s *stdDev) Values() map[string]float64 {
	if !s.Ready() {
		return single(math.NaN())
	}

	return single(s.closes.stddev(s.closes.mean()))
}

// bollingerBands is an SMA middle band with asymmetric deviation multipliers:
// upper = mid + upper_dev*sd, lower = mid - lower_dev*sd.
type bollingerBands struct {
	spec   Spec
	closes *window
}

func newBollingerBands(spec Spec) (Indicator, error) {
	return &bollingerBands{spec: spec, closes: newWindow(spec.Period)}, nil
}

func (b *bollingerBands) Name() string {
	return b.spec.Key()
}

func (b *bollingerBands) Update(bar types.Bar) {
	b.closes.push(bar.Close)
}

func (b *bollingerBands) Ready() bool {
	return b.closes.full()
}

func (b *bollingerBands) Values() map[string]float64 {
	if !b.Ready() {
		nan := math.NaN()

		return map[string]float64{FieldUpper: nan, FieldMiddle: nan, FieldLower: nan}
	}

	mid := b.closes.mean()
	sd := b.closes.stddev(mid)

	return map[string]float64{
		FieldUpper:  mid + b.spec.UpperDev*sd,
		FieldMiddle: mid,
		FieldLower:  mid - b.spec.LowerDev*sd,
	}
}
