package engine

import (
	"errors"
	"testing"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestNilCallbacksAreSkipped() {
	callbacks := LifecycleCallbacks{}

	suite.NoError(callbacks.RunStart("run", "threshold_ma", 10))
	suite.NoError(callbacks.ProcessData(1, 10))
	suite.NotPanics(func() {
		callbacks.OrderFilled(types.Order{})
		callbacks.RunEnd(types.RunResult{}, nil)
	})
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})
	callbacks := LifecycleCallbacks{OnProcessData: &callback}

	for i := 1; i <= 5; i++ {
		suite.NoError(callbacks.ProcessData(i, 5))
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestRunStartErrorIsReturned() {
	abort := errors.New("abort")
	callback := OnRunStartCallback(func(runID string, policy string, totalBars int) error {
		suite.Equal("run-1", runID)
		suite.Equal("bollinger_band", policy)
		suite.Equal(3, totalBars)

		return abort
	})
	callbacks := LifecycleCallbacks{OnRunStart: &callback}

	suite.ErrorIs(callbacks.RunStart("run-1", "bollinger_band", 3), abort)
}

func (suite *EngineTestSuite) TestOrderFilledAndRunEnd() {
	var filled []string
	onFilled := OnOrderFilledCallback(func(order types.Order) {
		filled = append(filled, order.OrderID)
	})

	var ended types.RunResult
	onEnd := OnRunEndCallback(func(result types.RunResult, err error) {
		ended = result
		suite.NoError(err)
	})

	callbacks := LifecycleCallbacks{OnOrderFilled: &onFilled, OnRunEnd: &onEnd}
	callbacks.OrderFilled(types.Order{OrderID: "a"})
	callbacks.OrderFilled(types.Order{OrderID: "b"})
	callbacks.RunEnd(types.RunResult{ID: "run"}, nil)

	suite.Equal([]string{"a", "b"}, filled)
	suite.Equal("run", ended.ID)
}
