package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side represents the order side (buy or sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// EntryType represents how the entry leg of a bracket order is placed.
type EntryType string

const (
	EntryTypeMarket EntryType = "market"
	EntryTypeLimit  EntryType = "limit"
)

// OrderStatus represents the lifecycle state of a bracket order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusActive          OrderStatus = "active"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// TakeProfitLevel is a single take-profit leg of a bracket order.
// Quantity is an absolute quantity, not a percentage of the total.
type TakeProfitLevel struct {
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	OrderID        string          `json:"order_id,omitempty"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
}

// BracketOrder is the aggregate root for a compound entry + stop-loss +
// take-profit order. ID and CreatedAt are immutable after creation; the
// price and level fields may only change while the order is pending.
type BracketOrder struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`

	// Entry configuration. EntryPrice is required for limit entries and
	// nil for market entries.
	EntryType           EntryType        `json:"entry_type"`
	EntryPrice          *decimal.Decimal `json:"entry_price,omitempty"`
	EntryOrderID        string           `json:"entry_order_id,omitempty"`
	EntryFilledQuantity decimal.Decimal  `json:"entry_filled_quantity"`
	EntryAveragePrice   *decimal.Decimal `json:"entry_average_price,omitempty"`

	// Stop loss (optional).
	StopLossPrice   *decimal.Decimal `json:"stop_loss_price,omitempty"`
	StopLossOrderID string           `json:"stop_loss_order_id,omitempty"`

	// Take profit legs, at most three.
	TakeProfitLevels []TakeProfitLevel `json:"take_profit_levels"`

	// Derived fill state.
	TotalFilledQuantity decimal.Decimal  `json:"total_filled_quantity"`
	RemainingQuantity   decimal.Decimal  `json:"remaining_quantity"`
	TotalPnL            *decimal.Decimal `json:"total_pnl,omitempty"`
}

// Clone returns a deep copy of the order. The store hands out clones so
// callers can never mutate the canonical record.
func (o *BracketOrder) Clone() *BracketOrder {
	c := *o
	c.EntryPrice = cloneDecimal(o.EntryPrice)
	c.EntryAveragePrice = cloneDecimal(o.EntryAveragePrice)
	c.StopLossPrice = cloneDecimal(o.StopLossPrice)
	c.TotalPnL = cloneDecimal(o.TotalPnL)
	if o.TakeProfitLevels != nil {
		c.TakeProfitLevels = make([]TakeProfitLevel, len(o.TakeProfitLevels))
		copy(c.TakeProfitLevels, o.TakeProfitLevels)
	}
	return &c
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
