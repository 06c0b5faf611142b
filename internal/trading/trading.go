// Package trading defines the contract between the execution driver and
// whatever actually executes orders: the simulated broker in backtests or an
// exchange adapter in live runs.
package trading

import (
	"context"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// Broker executes market orders for a single instrument.
type Broker interface {
	// Submit sends a market order for size units. The returned order is
	// normally PENDING; a broker may also resolve it immediately.
	Submit(ctx context.Context, side types.PurchaseType, size float64) (types.Order, error)
	// Poll returns the current state of a previously submitted order.
	Poll(ctx context.Context, orderID string) (types.Order, error)
	// Cash returns the cash available for new entries.
	Cash() float64
	// SetCommission sets the commission rate charged on the notional of each fill.
	SetCommission(rate float64)
}

// BarAware is implemented by brokers that need to see every bar, such as the
// simulated broker which fills pending orders against the next bar.
type BarAware interface {
	UpdateCurrentMarketData(bar types.Bar) error
}
