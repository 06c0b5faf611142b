package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PipelineTestSuite struct {
	suite.Suite
	bars []types.Bar
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.bars = make([]types.Bar, 700)

	for i := range suite.bars {
		c := 100 + 10*math.Sin(float64(i)/7) + float64(i%5)
		suite.bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1.5,
			Close:  c,
			Volume: float64(1000 + i),
		}
	}
}

func (suite *PipelineTestSuite) TestDeduplicatesSpecs() {
	p, err := NewPipeline(SMA(5), SMA(5), EMA(5), BollingerBands(5, 2, 2), BollingerBands(5, 2, 2))
	suite.Require().NoError(err)
	suite.Len(p.Specs(), 3)

	snapshot := p.Ingest(suite.bars[0])
	suite.Equal(3, snapshot.Len())
	suite.Equal(1, p.Bars())
}

func (suite *PipelineTestSuite) TestInvalidSpecFailsConstruction() {
	_, err := NewPipeline(SMA(5), SMA(0))
	suite.Require().Error(err)
	suite.True(errors.IsConfigurationError(err))
}

func (suite *PipelineTestSuite) TestSnapshotGet() {
	p, err := NewPipeline(SMA(3))
	suite.Require().NoError(err)

	var snapshot Snapshot
	for _, bar := range suite.bars[:2] {
		snapshot = p.Ingest(bar)
	}

	suite.True(math.IsNaN(snapshot.Value(SMA(3), FieldValue)), "warming up")
	suite.True(math.IsNaN(snapshot.Get("unknown_3", FieldValue)))
	suite.True(math.IsNaN(snapshot.Get("sma_3", "nope")))

	snapshot = p.Ingest(suite.bars[2])
	expected := (suite.bars[0].Close + suite.bars[1].Close + suite.bars[2].Close) / 3
	suite.InDelta(expected, snapshot.Value(SMA(3), FieldValue), 1e-9)
	suite.Equal(suite.bars[2].Time, snapshot.Time)
}

// Snapshots for bars[0..t] must not depend on anything after t.
func (suite *PipelineTestSuite) TestNoLookAhead() {
	specs := NewFeatureSet().Specs()
	specs = append(specs, WMA(10), LaguerreRSI(0.5, 6), StdDev(20))

	full, err := NewPipeline(specs...)
	suite.Require().NoError(err)

	fullSnapshots := make([]Snapshot, len(suite.bars))
	for i, bar := range suite.bars {
		fullSnapshots[i] = full.Ingest(bar)
	}

	for _, t := range []int{0, 10, 220, 650} {
		prefix, err := NewPipeline(specs...)
		suite.Require().NoError(err)

		var last Snapshot
		for _, bar := range suite.bars[:t+1] {
			last = prefix.Ingest(bar)
		}

		suite.True(last.Equal(fullSnapshots[t]), "snapshot at bar %d differs", t)
	}
}

func (suite *PipelineTestSuite) TestSnapshotEqual() {
	now := suite.bars[0].Time
	a := NewSnapshot(now, map[string]map[string]float64{"sma_3": {FieldValue: math.NaN()}})
	b := NewSnapshot(now, map[string]map[string]float64{"sma_3": {FieldValue: math.NaN()}})
	c := NewSnapshot(now, map[string]map[string]float64{"sma_3": {FieldValue: 1}})

	suite.True(a.Equal(b))
	suite.False(a.Equal(c))
	suite.False(a.Equal(NewSnapshot(now.Add(time.Minute), nil)))
}

func (suite *PipelineTestSuite) TestFeatureSet() {
	fs := NewFeatureSet()
	suite.Equal(40, fs.Len())
	suite.Len(fs.Names(), 40)
	suite.Equal("open", fs.Names()[0])
	suite.Equal("rsi_5", fs.Names()[5])
	suite.Equal("atr_200", fs.Names()[39])

	p, err := NewPipeline(fs.Specs()...)
	suite.Require().NoError(err)

	readyAt := -1

	for i, bar := range suite.bars {
		snapshot := p.Ingest(bar)

		vector, ok := fs.Vector(bar, snapshot)
		if !ok {
			suite.Nil(vector)

			continue
		}

		if readyAt < 0 {
			readyAt = i
		}

		suite.Len(vector, 40)
		suite.Equal(bar.Close, vector[3])
	}

	// TEMA(200) needs 3*200-2 bars and is the slowest feature to settle.
	suite.Equal(597, readyAt)
}
