// Package indicator computes technical indicators incrementally, one bar at a time.
//
// Every indicator keeps a bounded rolling window and exposes its latest value(s)
// after each Update. Fields are NaN until the window is full.
package indicator

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Field names returned by Values.
const (
	FieldValue     = "value"
	FieldUpper     = "upper"
	FieldMiddle    = "middle"
	FieldLower     = "lower"
	FieldMACD      = "macd"
	FieldSignal    = "signal"
	FieldHistogram = "histogram"
	FieldAroonUp   = "up"
	FieldAroonDown = "down"
	FieldTenkan    = "tenkan"
	FieldKijun     = "kijun"
)

// Indicator is a stateful, incremental technical indicator.
type Indicator interface {
	// Name returns the unique key of the indicator, e.g. "sma_20".
	Name() string
	// Update feeds the next bar. Bars must arrive in time order.
	Update(bar types.Bar)
	// Ready returns true once every field has a defined value.
	Ready() bool
	// Values returns the latest value of every field. Undefined fields are NaN.
	Values() map[string]float64
}

// Spec describes one configured indicator.
type Spec struct {
	Type   types.IndicatorType `yaml:"type" json:"type" mapstructure:"type"`
	Period int                 `yaml:"period" json:"period" mapstructure:"period"`
	// Fast and Slow are used by MACD, the awesome oscillator (fast/slow SMA)
	// and Ichimoku (tenkan/kijun).
	Fast int `yaml:"fast,omitempty" json:"fast,omitempty" mapstructure:"fast"`
	Slow int `yaml:"slow,omitempty" json:"slow,omitempty" mapstructure:"slow"`
	// Signal is the MACD signal line period.
	Signal int `yaml:"signal,omitempty" json:"signal,omitempty" mapstructure:"signal"`
	// UpperDev and LowerDev are the Bollinger band multipliers.
	UpperDev float64 `yaml:"upper_dev,omitempty" json:"upper_dev,omitempty" mapstructure:"upper_dev"`
	LowerDev float64 `yaml:"lower_dev,omitempty" json:"lower_dev,omitempty" mapstructure:"lower_dev"`
	// Gamma is the Laguerre filter coefficient.
	Gamma float64 `yaml:"gamma,omitempty" json:"gamma,omitempty" mapstructure:"gamma"`
}

func SMA(period int) Spec {
	return Spec{Type: types.IndicatorTypeSMA, Period: period}
}

func EMA(period int) Spec {
	return Spec{Type: types.IndicatorTypeEMA, Period: period}
}

func WMA(period int) Spec {
	return Spec{Type: types.IndicatorTypeWMA, Period: period}
}

func TEMA(period int) Spec {
	return Spec{Type: types.IndicatorTypeTEMA, Period: period}
}

func StdDev(period int) Spec {
	return Spec{Type: types.IndicatorTypeStdDev, Period: period}
}

func RSI(period int) Spec {
	return Spec{Type: types.IndicatorTypeRSI, Period: period}
}

func ATR(period int) Spec {
	return Spec{Type: types.IndicatorTypeATR, Period: period}
}

func Aroon(period int) Spec {
	return Spec{Type: types.IndicatorTypeAroon, Period: period}
}

func BollingerBands(period int, lowerDev, upperDev float64) Spec {
	return Spec{Type: types.IndicatorTypeBollingerBands, Period: period, LowerDev: lowerDev, UpperDev: upperDev}
}

func MACD(fast, slow, signal int) Spec {
	return Spec{Type: types.IndicatorTypeMACD, Period: slow, Fast: fast, Slow: slow, Signal: signal}
}

func AwesomeOscillator(fast, slow int) Spec {
	return Spec{Type: types.IndicatorTypeAwesomeOscillator, Period: slow, Fast: fast, Slow: slow}
}

func Ichimoku(tenkan, kijun int) Spec {
	return Spec{Type: types.IndicatorTypeIchimoku, Period: kijun, Fast: tenkan, Slow: kijun}
}

// LaguerreRSI returns the spec of a Laguerre RSI with the given gamma. period is
// the number of bars before the value is considered settled.
func LaguerreRSI(gamma float64, period int) Spec {
	return Spec{Type: types.IndicatorTypeLaguerreRSI, Period: period, Gamma: gamma}
}

// MovingAverage returns the spec of the moving average named by maType (sma, ema or wma).
func MovingAverage(maType string, period int) (Spec, error) {
	switch types.IndicatorType(maType) {
	case types.IndicatorTypeSMA, types.IndicatorTypeEMA, types.IndicatorTypeWMA:
		return Spec{Type: types.IndicatorType(maType), Period: period}, nil
	default:
		return Spec{}, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported moving average type %q", maType)
	}
}

// Key uniquely identifies the indicator state a spec describes. Two specs with
// the same key share one instance in a Pipeline.
func (s Spec) Key() string {
	switch s.Type {
	case types.IndicatorTypeBollingerBands:
		return fmt.Sprintf("%s_%d_%s_%s", s.Type, s.Period, formatFloat(s.LowerDev), formatFloat(s.UpperDev))
	case types.IndicatorTypeMACD:
		return fmt.Sprintf("%s_%d_%d_%d", s.Type, s.Fast, s.Slow, s.Signal)
	case types.IndicatorTypeAwesomeOscillator, types.IndicatorTypeIchimoku:
		return fmt.Sprintf("%s_%d_%d", s.Type, s.Fast, s.Slow)
	case types.IndicatorTypeLaguerreRSI:
		return fmt.Sprintf("%s_%s_%d", s.Type, formatFloat(s.Gamma), s.Period)
	default:
		return fmt.Sprintf("%s_%d", s.Type, s.Period)
	}
}

// Validate returns a configuration error when the spec cannot be built.
func (s Spec) Validate() error {
	if s.Period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s: period must be a positive integer, got %d", s.Type, s.Period)
	}

	switch s.Type {
	case types.IndicatorTypeBollingerBands:
		if s.LowerDev < 0 || s.UpperDev < 0 || math.IsNaN(s.LowerDev) || math.IsNaN(s.UpperDev) {
			return errors.Newf(errors.ErrCodeInvalidMultiplier, "%s: deviation multipliers must be non-negative", s.Type)
		}
	case types.IndicatorTypeMACD:
		if s.Fast <= 0 || s.Slow <= 0 || s.Signal <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "%s: fast, slow and signal periods must be positive", s.Type)
		}

		if s.Fast >= s.Slow {
			return errors.Newf(errors.ErrCodeInvalidParameter, "%s: fast period %d must be below slow period %d", s.Type, s.Fast, s.Slow)
		}
	case types.IndicatorTypeAwesomeOscillator, types.IndicatorTypeIchimoku:
		if s.Fast <= 0 || s.Slow <= 0 {
			return errors.Newf(errors.ErrCodeInvalidPeriod, "%s: fast and slow periods must be positive", s.Type)
		}
	case types.IndicatorTypeLaguerreRSI:
		if s.Gamma < 0 || s.Gamma >= 1 || math.IsNaN(s.Gamma) {
			return errors.Newf(errors.ErrCodeInvalidParameter, "%s: gamma must be in [0, 1), got %v", s.Type, s.Gamma)
		}
	}

	return nil
}

// New builds the indicator described by spec.
func New(spec Spec) (Indicator, error) {
	return builtinRegistry.Create(spec)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func single(value float64) map[string]float64 {
	return map[string]float64{FieldValue: value}
}
