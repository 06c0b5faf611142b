package indicator

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Pipeline owns one indicator instance per distinct spec key and feeds every
// bar to all of them.
type Pipeline struct {
	specs      []Spec
	indicators []Indicator
	bars       int
}

// NewPipeline builds a pipeline. Specs with the same key are de-duplicated.
// Any invalid spec fails the whole pipeline with a configuration error.
func NewPipeline(specs ...Spec) (*Pipeline, error) {
	p := &Pipeline{}
	seen := make(map[string]struct{}, len(specs))

	for _, spec := range specs {
		key := spec.Key()
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}

		ind, err := New(spec)
		if err != nil {
			return nil, err
		}

		p.specs = append(p.specs, spec)
		p.indicators = append(p.indicators, ind)
	}

	return p, nil
}

// Specs returns the de-duplicated specs in registration order.
func (p *Pipeline) Specs() []Spec {
	return append([]Spec(nil), p.specs...)
}

// Bars returns how many bars have been ingested.
func (p *Pipeline) Bars() int {
	return p.bars
}

// Ingest feeds bar to every indicator and returns the resulting values.
func (p *Pipeline) Ingest(bar types.Bar) Snapshot {
	values := make(map[string]map[string]float64, len(p.indicators))

	for _, ind := range p.indicators {
		ind.Update(bar)
		values[ind.Name()] = ind.Values()
	}

	p.bars++

	return Snapshot{Time: bar.Time, values: values}
}

// Snapshot holds the indicator values computed after one bar.
type Snapshot struct {
	Time   time.Time
	values map[string]map[string]float64
}

// NewSnapshot builds a snapshot from raw values keyed by spec key and field.
func NewSnapshot(t time.Time, values map[string]map[string]float64) Snapshot {
	return Snapshot{Time: t, values: values}
}

// Get returns the value of field for the indicator with the given key, or NaN
// when the indicator is unknown or still warming up.
func (s Snapshot) Get(key, field string) float64 {
	fields, ok := s.values[key]
	if !ok {
		return math.NaN()
	}

	v, ok := fields[field]
	if !ok {
		return math.NaN()
	}

	return v
}

// Value is Get keyed by spec.
func (s Snapshot) Value(spec Spec, field string) float64 {
	return s.Get(spec.Key(), field)
}

// Len returns the number of indicators in the snapshot.
func (s Snapshot) Len() int {
	return len(s.values)
}

// Equal reports whether both snapshots hold the same values. NaN equals NaN.
func (s Snapshot) Equal(other Snapshot) bool {
	if !s.Time.Equal(other.Time) || len(s.values) != len(other.values) {
		return false
	}

	for key, fields := range s.values {
		otherFields, ok := other.values[key]
		if !ok || len(fields) != len(otherFields) {
			return false
		}

		for field, v := range fields {
			o, ok := otherFields[field]
			if !ok {
				return false
			}

			if v != o && !(math.IsNaN(v) && math.IsNaN(o)) {
				return false
			}
		}
	}

	return true
}
