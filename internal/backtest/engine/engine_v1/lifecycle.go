package engine

import (
	"context"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/internal/trading"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

type LifecycleState string

const (
	StateFlat        LifecycleState = "FLAT"
	StatePendingBuy  LifecycleState = "PENDING_BUY"
	StateLong        LifecycleState = "LONG"
	StatePendingSell LifecycleState = "PENDING_SELL"
)

// Lifecycle tracks the single long position and the single outstanding order
// of one run. It moves FLAT -> PENDING_BUY -> LONG -> PENDING_SELL -> FLAT.
type Lifecycle struct {
	position     types.PositionState
	pending      optional.Option[types.Order]
	pendingIndex int
	tradeLog     []types.TradeRecord
	orders       []types.Order
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		pending:  optional.None[types.Order](),
		tradeLog: []types.TradeRecord{},
		orders:   []types.Order{},
	}
}

// State derives the lifecycle state from the position and the pending order.
func (l *Lifecycle) State() LifecycleState {
	if order, err := l.pending.Take(); err == nil {
		if order.Side == types.PurchaseTypeBuy {
			return StatePendingBuy
		}

		return StatePendingSell
	}

	if l.position.IsOpen {
		return StateLong
	}

	return StateFlat
}

// Submit turns decision into an order on broker. ENTER is only acted on when
// FLAT and EXIT only when LONG; every other combination is a no-op. Any
// non-HOLD decision while an order is outstanding is an order protocol
// violation.
func (l *Lifecycle) Submit(ctx context.Context, broker trading.Broker, decision types.Decision, bar types.Bar) (optional.Option[types.Order], error) {
	none := optional.None[types.Order]()

	if decision.Intent == types.IntentHold {
		return none, nil
	}

	if l.pending.IsSome() {
		return none, errors.Newf(errors.ErrCodeOrderProtocolViolation,
			"%s decided at %s while order %s is pending", decision.Intent, bar.Time, l.pending.Unwrap().OrderID)
	}

	var (
		side types.PurchaseType
		size float64
	)

	switch {
	case decision.Intent == types.IntentEnter && !l.position.IsOpen:
		side, size = types.PurchaseTypeBuy, decision.Size
	case decision.Intent == types.IntentExit && l.position.IsOpen:
		side, size = types.PurchaseTypeSell, l.position.Size
	default:
		return none, nil
	}

	order, err := broker.Submit(ctx, side, size)
	if err != nil {
		return none, errors.Wrapf(errors.ErrCodeOrderRejected, err, "failed to submit %s order", side)
	}

	if order.Reason == "" {
		order.Reason = decision.Reason
	}

	if order.SubmittedAt.IsZero() {
		order.SubmittedAt = bar.Time
	}

	l.orders = append(l.orders, order)
	l.pendingIndex = len(l.orders) - 1
	l.pending = optional.Some(order)

	if err := l.Resolve(order); err != nil {
		return none, err
	}

	return optional.Some(l.orders[l.pendingIndex]), nil
}

// Resolve applies a polled order: FILLED goes to OnFill, CANCELLED and
// REJECTED to OnCancelOrReject, and PENDING leaves the state unchanged.
func (l *Lifecycle) Resolve(order types.Order) error {
	switch order.Status {
	case types.OrderStatusFilled:
		return l.OnFill(order)
	case types.OrderStatusCancelled, types.OrderStatusRejected:
		return l.OnCancelOrReject(order)
	default:
		return nil
	}
}

// OnFill applies a filled order. A BUY opens the position with the high-water
// mark at the fill price; a SELL closes it and appends a trade record.
func (l *Lifecycle) OnFill(order types.Order) error {
	if err := l.matchPending(order); err != nil {
		return err
	}

	price, err := order.FillPrice.Take()
	if err != nil || order.Status != types.OrderStatusFilled {
		return errors.Newf(errors.ErrCodeInvalidOrder, "order %s is not filled", order.OrderID)
	}

	switch order.Side {
	case types.PurchaseTypeBuy:
		l.position = types.PositionState{
			IsOpen:        true,
			EntryPrice:    price,
			Size:          order.RequestedSize,
			HighWaterMark: price,
			EntryTime:     order.ResolvedAt,
			EntryFee:      order.Fee,
		}
	case types.PurchaseTypeSell:
		reason := l.orders[l.pendingIndex].Reason
		l.tradeLog = append(l.tradeLog, types.NewTradeRecord(l.position, order.ResolvedAt, price, order.Fee, reason))
		l.position = types.PositionState{}
	}

	l.settle(order)

	return nil
}

// OnCancelOrReject drops the pending order and leaves the position unchanged.
func (l *Lifecycle) OnCancelOrReject(order types.Order) error {
	if err := l.matchPending(order); err != nil {
		return err
	}

	l.settle(order)

	return nil
}

// MarkHighWater raises the high-water mark of the open position. It never
// lowers it.
func (l *Lifecycle) MarkHighWater(price float64) {
	if l.position.IsOpen && price > l.position.HighWaterMark {
		l.position.HighWaterMark = price
	}
}

func (l *Lifecycle) Position() types.PositionState {
	return l.position
}

func (l *Lifecycle) PendingOrder() optional.Option[types.Order] {
	return l.pending
}

func (l *Lifecycle) TradeLog() []types.TradeRecord {
	return append([]types.TradeRecord{}, l.tradeLog...)
}

// Orders returns every submitted order with its latest known status.
func (l *Lifecycle) Orders() []types.Order {
	return append([]types.Order{}, l.orders...)
}

func (l *Lifecycle) matchPending(order types.Order) error {
	pending, err := l.pending.Take()
	if err != nil || pending.OrderID != order.OrderID {
		return errors.Newf(errors.ErrCodeOrderNotFound, "order %s is not the pending order", order.OrderID)
	}

	return nil
}

func (l *Lifecycle) settle(order types.Order) {
	if order.Reason == "" {
		order.Reason = l.orders[l.pendingIndex].Reason
	}

	l.orders[l.pendingIndex] = order
	l.pending = optional.None[types.Order]()
}
