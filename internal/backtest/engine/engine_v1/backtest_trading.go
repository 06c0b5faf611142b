package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/utils"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"github.com/shopspring/decimal"
)

// SimulatedBroker executes market orders against the bar stream.
// An order submitted on bar t is filled at the open of bar t+1.
//
// Fill rules:
//   - Sizes are rounded down to the configured decimal precision.
//   - A BUY whose cost plus commission exceeds cash is REJECTED.
//   - A SELL larger than the holdings is reduced to the holdings.
type SimulatedBroker struct {
	mu               sync.Mutex
	cash             decimal.Decimal
	holdings         decimal.Decimal
	commission       commission_fee.CommissionFee
	decimalPrecision int
	bar              types.Bar
	hasBar           bool
	pending          []string
	orders           map[string]types.Order
	history          []string
}

func NewSimulatedBroker(initialCash float64, commission commission_fee.CommissionFee, decimalPrecision int) *SimulatedBroker {
	if commission == nil {
		commission = commission_fee.NewZeroCommissionFee()
	}

	return &SimulatedBroker{
		cash:             decimal.NewFromFloat(initialCash),
		holdings:         decimal.Zero,
		commission:       commission,
		decimalPrecision: decimalPrecision,
		orders:           make(map[string]types.Order),
	}
}

// Submit implements trading.Broker.
func (b *SimulatedBroker) Submit(ctx context.Context, side types.PurchaseType, size float64) (types.Order, error) {
	if err := ctx.Err(); err != nil {
		return types.Order{}, err
	}

	if side != types.PurchaseTypeBuy && side != types.PurchaseTypeSell {
		return types.Order{}, errors.Newf(errors.ErrCodeInvalidOrder, "unknown order side %q", side)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	size = utils.RoundToDecimalPrecision(size, b.decimalPrecision)
	if side == types.PurchaseTypeSell {
		if holdings := b.holdings.InexactFloat64(); size > holdings {
			size = holdings
		}
	}

	order := types.Order{
		OrderID:       uuid.New().String(),
		Side:          side,
		RequestedSize: size,
		Status:        types.OrderStatusPending,
		SubmittedAt:   b.bar.Time,
	}

	if size <= 0 {
		order.Status = types.OrderStatusRejected
		order.ResolvedAt = b.bar.Time
		order.Reason = types.OrderReasonInvalidQuantity
	} else {
		b.pending = append(b.pending, order.OrderID)
	}

	b.orders[order.OrderID] = order
	b.history = append(b.history, order.OrderID)

	return order, nil
}

// Poll implements trading.Broker.
func (b *SimulatedBroker) Poll(ctx context.Context, orderID string) (types.Order, error) {
	if err := ctx.Err(); err != nil {
		return types.Order{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return types.Order{}, errors.Newf(errors.ErrCodeOrderNotFound, "order %s not found", orderID)
	}

	return order, nil
}

// UpdateCurrentMarketData moves the broker to bar and fills every pending
// order at its open.
func (b *SimulatedBroker) UpdateCurrentMarketData(bar types.Bar) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.hasBar && !bar.Time.After(b.bar.Time) {
		return errors.Newf(errors.ErrCodeDataOutOfOrder, "bar at %s does not follow %s", bar.Time, b.bar.Time)
	}

	if err := bar.Validate(); err != nil {
		return err
	}

	b.bar = bar
	b.hasBar = true

	for _, id := range b.pending {
		b.orders[id] = b.fill(b.orders[id], bar)
	}

	b.pending = b.pending[:0]

	return nil
}

func (b *SimulatedBroker) fill(order types.Order, bar types.Bar) types.Order {
	order.ResolvedAt = bar.Time
	price := decimal.NewFromFloat(bar.Open)

	switch order.Side {
	case types.PurchaseTypeBuy:
		fee := decimal.NewFromFloat(b.commission.Calculate(order.RequestedSize, bar.Open))
		cost := utils.Notional(order.RequestedSize, bar.Open).Add(fee)

		if cost.GreaterThan(b.cash) {
			order.Status = types.OrderStatusRejected
			order.Reason = types.OrderReasonInsufficientBuyPower

			return order
		}

		b.cash = b.cash.Sub(cost)
		b.holdings = b.holdings.Add(decimal.NewFromFloat(order.RequestedSize))
		order.Fee = fee.InexactFloat64()
	case types.PurchaseTypeSell:
		size := decimal.Min(decimal.NewFromFloat(order.RequestedSize), b.holdings)
		if !size.IsPositive() {
			order.Status = types.OrderStatusRejected
			order.Reason = types.OrderReasonInvalidQuantity

			return order
		}

		fee := decimal.NewFromFloat(b.commission.Calculate(size.InexactFloat64(), bar.Open))
		b.cash = b.cash.Add(size.Mul(price)).Sub(fee)
		b.holdings = b.holdings.Sub(size)
		order.RequestedSize = size.InexactFloat64()
		order.Fee = fee.InexactFloat64()
	}

	order.Status = types.OrderStatusFilled
	order.FillPrice = optional.Some(bar.Open)

	return order
}

// Cancel cancels a pending order. Resolved orders are left untouched.
func (b *SimulatedBroker) Cancel(orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return errors.Newf(errors.ErrCodeOrderNotFound, "order %s not found", orderID)
	}

	if order.Status.IsTerminal() {
		return nil
	}

	for i, id := range b.pending {
		if id == orderID {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)

			break
		}
	}

	order.Status = types.OrderStatusCancelled
	order.ResolvedAt = b.bar.Time
	b.orders[orderID] = order

	return nil
}

// Cash implements trading.Broker.
func (b *SimulatedBroker) Cash() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.cash.InexactFloat64()
}

// Holdings returns the quantity currently held.
func (b *SimulatedBroker) Holdings() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.holdings.InexactFloat64()
}

// SetCommission implements trading.Broker. It switches the broker to a
// percentage-of-notional commission.
func (b *SimulatedBroker) SetCommission(rate float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.commission = commission_fee.NewPercentageCommissionFee(rate)
}

// Orders returns every order in submission order.
func (b *SimulatedBroker) Orders() []types.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders := make([]types.Order, 0, len(b.history))
	for _, id := range b.history {
		orders = append(orders, b.orders[id])
	}

	return orders
}
