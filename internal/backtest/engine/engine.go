package engine

import (
	"context"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Lifecycle callback types for a run.
// All callbacks with error return can abort execution if they return an error

// OnRunStartCallback is called once before the first bar is processed.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, policy string, totalBars int) error

// OnProcessDataCallback is called after each bar is processed.
type OnProcessDataCallback func(current int, total int) error

// OnOrderFilledCallback is called whenever an order is filled.
type OnOrderFilledCallback func(order types.Order)

// OnRunEndCallback is called when the run ends (always called via defer).
type OnRunEndCallback func(result types.RunResult, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart    *OnRunStartCallback
	OnProcessData *OnProcessDataCallback
	OnOrderFilled *OnOrderFilledCallback
	OnRunEnd      *OnRunEndCallback
}

func (c LifecycleCallbacks) RunStart(runID string, policy string, totalBars int) error {
	if c.OnRunStart == nil {
		return nil
	}

	return (*c.OnRunStart)(runID, policy, totalBars)
}

func (c LifecycleCallbacks) ProcessData(current int, total int) error {
	if c.OnProcessData == nil {
		return nil
	}

	return (*c.OnProcessData)(current, total)
}

func (c LifecycleCallbacks) OrderFilled(order types.Order) {
	if c.OnOrderFilled != nil {
		(*c.OnOrderFilled)(order)
	}
}

func (c LifecycleCallbacks) RunEnd(result types.RunResult, err error) {
	if c.OnRunEnd != nil {
		(*c.OnRunEnd)(result, err)
	}
}

type Engine interface {
	// Run executes the policy over bars and returns the result of the run.
	// Bars must be non-empty and strictly increasing in time.
	// The context can be used to cancel the run between bars.
	Run(ctx context.Context, bars []types.Bar) (types.RunResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
