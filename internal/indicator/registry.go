package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

// Factory builds an indicator from an already validated spec.
type Factory func(spec Spec) (Indicator, error)

// IndicatorRegistry maps indicator types to their factories.
type IndicatorRegistry interface {
	RegisterIndicator(indicatorType types.IndicatorType, factory Factory) error
	GetIndicator(indicatorType types.IndicatorType) (Factory, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(indicatorType types.IndicatorType) error
	// Create validates spec and builds a fresh indicator for it.
	Create(spec Spec) (Indicator, error)
}

// IndicatorRegistryV1 manages all available indicators.
type IndicatorRegistryV1 struct {
	factories map[types.IndicatorType]Factory
	mu        sync.RWMutex
}

var builtinRegistry = NewIndicatorRegistry()

// NewIndicatorRegistry creates a registry with every built-in indicator registered.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		factories: map[types.IndicatorType]Factory{
			types.IndicatorTypeSMA:               newSMA,
			types.IndicatorTypeEMA:               newEMA,
			types.IndicatorTypeWMA:               newWMA,
			types.IndicatorTypeTEMA:              newTEMA,
			types.IndicatorTypeStdDev:            newStdDev,
			types.IndicatorTypeBollingerBands:    newBollingerBands,
			types.IndicatorTypeRSI:               newRSI,
			types.IndicatorTypeLaguerreRSI:       newLaguerreRSI,
			types.IndicatorTypeATR:               newATR,
			types.IndicatorTypeMACD:              newMACD,
			types.IndicatorTypeAroon:             newAroon,
			types.IndicatorTypeAwesomeOscillator: newAwesomeOscillator,
			types.IndicatorTypeIchimoku:          newIchimoku,
		},
		mu: sync.RWMutex{},
	}
}

// RegisterIndicator adds an indicator factory to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(indicatorType types.IndicatorType, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[indicatorType]; exists {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "indicator %s already registered", indicatorType)
	}

	r.factories[indicatorType] = factory

	return nil
}

// GetIndicator retrieves an indicator factory by type.
func (r *IndicatorRegistryV1) GetIndicator(indicatorType types.IndicatorType) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[indicatorType]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", indicatorType)
	}

	return factory, nil
}

// ListIndicators returns all registered indicator types in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// RemoveIndicator removes an indicator factory from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(indicatorType types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[indicatorType]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", indicatorType)
	}

	delete(r.factories, indicatorType)

	return nil
}

func (r *IndicatorRegistryV1) Create(spec Spec) (Indicator, error) {
	factory, err := r.GetIndicator(spec.Type)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "unknown indicator type", err)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return factory(spec)
}
