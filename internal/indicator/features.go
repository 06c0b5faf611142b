package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// featurePeriods are the three horizons every feature family is computed at.
var featurePeriods = []int{5, 30, 200}

type featureColumn struct {
	name  string
	spec  Spec
	field string
}

// FeatureSet is the ordered feature vector fed to an external score provider.
// The column layout matches the one the score models were trained on.
type FeatureSet struct {
	columns []featureColumn
	specs   []Spec
}

// NewFeatureSet returns the default feature layout: OHLCV, then RSI, Bollinger
// bands, Aroon, awesome oscillator, Ichimoku, TEMA, MACD and ATR.
func NewFeatureSet() *FeatureSet {
	fs := &FeatureSet{}

	for _, p := range featurePeriods {
		fs.add(fmt.Sprintf("rsi_%d", p), RSI(p), FieldValue)
	}

	for _, p := range featurePeriods {
		bb := BollingerBands(p, 2, 2)
		fs.add(fmt.Sprintf("bb_%d_top", p), bb, FieldUpper)
		fs.add(fmt.Sprintf("bb_%d_mid", p), bb, FieldMiddle)
		fs.add(fmt.Sprintf("bb_%d_bot", p), bb, FieldLower)
	}

	for _, p := range featurePeriods {
		fs.add(fmt.Sprintf("aroon_up_%d", p), Aroon(p), FieldAroonUp)
		fs.add(fmt.Sprintf("aroon_down_%d", p), Aroon(p), FieldAroonDown)
	}

	aoPairs := [][2]int{{3, 5}, {10, 30}, {50, 200}}
	for i, p := range featurePeriods {
		fs.add(fmt.Sprintf("ao_%d", p), AwesomeOscillator(aoPairs[i][0], aoPairs[i][1]), FieldValue)
	}

	fs.add("ichimoku_tenkan", Ichimoku(9, 26), FieldTenkan)
	fs.add("ichimoku_kijun", Ichimoku(9, 26), FieldKijun)

	for _, p := range featurePeriods {
		fs.add(fmt.Sprintf("tema_%d", p), TEMA(p), FieldValue)
	}

	macdParams := [][3]int{{4, 8, 3}, {12, 30, 9}, {50, 200, 20}}
	for i, p := range featurePeriods {
		m := MACD(macdParams[i][0], macdParams[i][1], macdParams[i][2])
		fs.add(fmt.Sprintf("macd_%d", p), m, FieldMACD)
		fs.add(fmt.Sprintf("macd_%d_signal", p), m, FieldSignal)
	}

	for _, p := range featurePeriods {
		fs.add(fmt.Sprintf("atr_%d", p), ATR(p), FieldValue)
	}

	return fs
}

func (fs *FeatureSet) add(name string, spec Spec, field string) {
	fs.columns = append(fs.columns, featureColumn{name: name, spec: spec, field: field})

	for _, existing := range fs.specs {
		if existing.Key() == spec.Key() {
			return
		}
	}

	fs.specs = append(fs.specs, spec)
}

// Specs returns the indicators the pipeline must compute for this feature set.
func (fs *FeatureSet) Specs() []Spec {
	return append([]Spec(nil), fs.specs...)
}

// Names returns the column names, OHLCV first.
func (fs *FeatureSet) Names() []string {
	names := []string{"open", "high", "low", "close", "volume"}
	for _, c := range fs.columns {
		names = append(names, c.name)
	}

	return names
}

// Len is the length of the vector Vector returns.
func (fs *FeatureSet) Len() int {
	return 5 + len(fs.columns)
}

// Vector assembles the feature vector for bar. It returns false while any
// feature is still undefined.
func (fs *FeatureSet) Vector(bar types.Bar, snapshot Snapshot) ([]float64, bool) {
	vector := make([]float64, 0, fs.Len())
	vector = append(vector, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)

	for _, c := range fs.columns {
		v := snapshot.Value(c.spec, c.field)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}

		vector = append(vector, v)
	}

	return vector, true
}
