package datasource

import (
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// InMemoryDataSource serves a fixed, time-sorted slice of bars. The optimizer
// and the tests read from it; Preload fills one from any other source.
type InMemoryDataSource struct {
	bars []types.Bar
	mu   sync.RWMutex
}

// NewInMemoryDataSource copies bars and sorts them by time.
func NewInMemoryDataSource(bars []types.Bar) *InMemoryDataSource {
	ds := &InMemoryDataSource{}
	ds.set(bars)

	return ds
}

// Preload reads every bar of underlying in [start, end] into memory.
func Preload(underlying DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) (*InMemoryDataSource, error) {
	var bars []types.Bar

	for bar, err := range underlying.ReadAll(start, end) {
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataNotFound, "failed to preload data", err)
		}

		bars = append(bars, bar)
	}

	return NewInMemoryDataSource(bars), nil
}

func (ds *InMemoryDataSource) set(bars []types.Bar) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.bars = make([]types.Bar, len(bars))
	copy(ds.bars, bars)

	sort.SliceStable(ds.bars, func(i, j int) bool {
		return ds.bars[i].Time.Before(ds.bars[j].Time)
	})
}

// Initialize implements DataSource. The data is already in memory so path is ignored.
func (ds *InMemoryDataSource) Initialize(path string) error {
	return nil
}

// ReadAll implements DataSource.
func (ds *InMemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		ds.mu.RLock()
		defer ds.mu.RUnlock()

		for _, bar := range ds.bars {
			if !inRange(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (ds *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	count := 0

	for _, bar := range ds.bars {
		if inRange(bar.Time, start, end) {
			count++
		}
	}

	return count, nil
}

// Bars returns a copy of every bar held.
func (ds *InMemoryDataSource) Bars() []types.Bar {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	out := make([]types.Bar, len(ds.bars))
	copy(out, ds.bars)

	return out
}

// Close implements DataSource.
func (ds *InMemoryDataSource) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.bars = nil

	return nil
}
