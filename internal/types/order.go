package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
)

type PurchaseType string

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderReasonStopLoss             string = "stop_loss"
	OrderReasonTakeProfit           string = "take_profit"
	OrderReasonTrailingStop         string = "trailing_stop"
	OrderReasonStrategy             string = "strategy"
	OrderReasonInsufficientBuyPower string = "insufficient_buying_power"
	OrderReasonInvalidQuantity      string = "invalid_quantity"
)

// IsTerminal reports whether the status can no longer change.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled || s == OrderStatusRejected
}

type Order struct {
	OrderID       string       `yaml:"order_id" json:"order_id" csv:"order_id" validate:"required,uuid"`
	Side          PurchaseType `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	RequestedSize float64      `yaml:"requested_size" json:"requested_size" csv:"requested_size" validate:"gt=0"`
	// Status is PENDING until the broker resolves it, then one of FILLED, CANCELLED or REJECTED.
	Status OrderStatus `yaml:"status" json:"status" csv:"status" validate:"required,oneof=PENDING FILLED CANCELLED REJECTED"`
	// FillPrice is only set once the order is FILLED.
	FillPrice   optional.Option[float64] `yaml:"fill_price" json:"fill_price" csv:"-"`
	Fee         float64                  `yaml:"fee" json:"fee" csv:"fee" validate:"gte=0"`
	SubmittedAt time.Time                `yaml:"submitted_at" json:"submitted_at" csv:"submitted_at"`
	ResolvedAt  time.Time                `yaml:"resolved_at" json:"resolved_at" csv:"resolved_at"`
	Reason      string                   `yaml:"reason" json:"reason" csv:"reason"`
}

// Validate validates the Order struct.
func (o *Order) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	if o.Status == OrderStatusFilled && o.FillPrice.IsNone() {
		return errors.New(errors.ErrCodeInvalidOrder, "filled order is missing a fill price")
	}

	return nil
}
