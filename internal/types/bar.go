package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Bar is one OHLCV sample for a fixed interval. Bars are immutable once produced.
type Bar struct {
	Time   time.Time `csv:"time" json:"time" yaml:"time"`
	Open   float64   `csv:"open" json:"open" yaml:"open"`
	High   float64   `csv:"high" json:"high" yaml:"high"`
	Low    float64   `csv:"low" json:"low" yaml:"low"`
	Close  float64   `csv:"close" json:"close" yaml:"close"`
	Volume float64   `csv:"volume" json:"volume" yaml:"volume"`
}

// MedianPrice returns (high + low) / 2.
func (b Bar) MedianPrice() float64 {
	return (b.High + b.Low) / 2
}

// Validate reports a bar whose prices or volume are NaN or infinite. Such a
// bar cannot be priced or fed to an indicator.
func (b Bar) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
		{"volume", b.Volume},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errors.Newf(errors.ErrCodeIndicatorCalculation, "bar at %s has non-finite %s: %v", b.Time, f.name, f.value)
		}
	}

	return nil
}
