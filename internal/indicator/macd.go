package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// macd is the difference of a fast and a slow EMA of closes, with an EMA
// signal line over that difference.
type macd struct {
	spec   Spec
	fast   *emaState
	slow   *emaState
	signal *emaState
	line   float64
}

func newMACD(spec Spec) (Indicator, error) {
	return &macd{
		spec:   spec,
		fast:   newEMAState(spec.Fast),
		slow:   newEMAState(spec.Slow),
		signal: newEMAState(spec.Signal),
		line:   math.NaN(),
	}, nil
}

func (m *macd) Name() string {
	return m.spec.Key()
}

func (m *macd) Update(bar types.Bar) {
	fast := m.fast.push(bar.Close)
	slow := m.slow.push(bar.Close)

	if !m.slow.ready() {
		return
	}

	m.line = fast - slow
	m.signal.push(m.line)
}

func (m *macd) Ready() bool {
	return m.signal.ready()
}

func (m *macd) Values() map[string]float64 {
	signal := m.signal.value

	return map[string]float64{
		FieldMACD:      m.line,
		FieldSignal:    signal,
		FieldHistogram: m.line - signal,
	}
}
