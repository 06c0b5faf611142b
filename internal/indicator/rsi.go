package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// rsi is the Relative Strength Index with Wilder's smoothing. The first average
// gain and loss are simple means over the first period changes.
type rsi struct {
	spec      Spec
	prevClose float64
	changes   int
	avgGain   float64
	avgLoss   float64
}

func newRSI(spec Spec) (Indicator, error) {
	return &rsi{spec: spec, prevClose: math.NaN()}, nil
}

func (r *rsi) Name() string {
	return r.spec.Key()
}

func (r *rsi) Update(bar types.Bar) {
	if math.IsNaN(r.prevClose) {
		r.prevClose = bar.Close

		return
	}

	change := bar.Close - r.prevClose
	r.prevClose = bar.Close

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	period := float64(r.spec.Period)
	r.changes++

	switch {
	case r.changes < r.spec.Period:
		r.avgGain += gain
		r.avgLoss += loss
	case r.changes == r.spec.Period:
		r.avgGain = (r.avgGain + gain) / period
		r.avgLoss = (r.avgLoss + loss) / period
	default:
		r.avgGain = (r.avgGain*(period-1) + gain) / period
		r.avgLoss = (r.avgLoss*(period-1) + loss) / period
	}
}

func (r *rsi) Ready() bool {
	return r.changes >= r.spec.Period
}

func (r *rsi) Values() map[string]float64 {
	if !r.Ready() {
		return single(math.NaN())
	}

	if r.avgLoss == 0 {
		if r.avgGain == 0 {
			// No movement at all.
			return single(50)
		}

		return single(100)
	}

	rs := r.avgGain / r.avgLoss

	return single(100 - 100/(1+rs))
}

// laguerreRSI is Ehlers' Laguerre RSI, a four-stage Laguerre filter whose
// up/down differences form an RSI in [0, 1].
type laguerreRSI struct {
	spec           Spec
	count          int
	l0, l1, l2, l3 float64
	value          float64
}

func newLaguerreRSI(spec Spec) (Indicator, error) {
	return &laguerreRSI{spec: spec, value: math.NaN()}, nil
}

func (l *laguerreRSI) Name() string {
	return l.spec.Key()
}

func (l *laguerreRSI) Update(bar types.Bar) {
	g := l.spec.Gamma
	prev0, prev1, prev2 := l.l0, l.l1, l.l2

	l.l0 = (1-g)*bar.Close + g*prev0
	l.l1 = -g*l.l0 + prev0 + g*prev1
	l.l2 = -g*l.l1 + prev1 + g*prev2
	l.l3 = -g*l.l2 + prev2 + g*l.l3

	cu, cd := 0.0, 0.0
	for _, pair := range [][2]float64{{l.l0, l.l1}, {l.l1, l.l2}, {l.l2, l.l3}} {
		if pair[0] >= pair[1] {
			cu += pair[0] - pair[1]
		} else {
			cd += pair[1] - pair[0]
		}
	}

	l.count++

	if cu+cd == 0 {
		l.value = 1
	} else {
		l.value = cu / (cu + cd)
	}
}

func (l *laguerreRSI) Ready() bool {
	return l.count >= l.spec.Period
}

func (l *laguerreRSI) Values() map[string]float64 {
	if !l.Ready() {
		return single(math.NaN())
	}

	return single(l.value)
}
