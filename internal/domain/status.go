package domain

import "fmt"

// statusTransition is a single edge in the order lifecycle graph.
type statusTransition struct {
	From OrderStatus
	To   OrderStatus
}

// transitions enumerates every sanctioned status change. Anything not in
// this table is rejected. FILLED, CANCELLED and REJECTED are terminal.
var transitions = map[statusTransition]bool{
	{OrderStatusPending, OrderStatusActive}:            true,
	{OrderStatusPending, OrderStatusCancelled}:         true,
	{OrderStatusPending, OrderStatusRejected}:          true,
	{OrderStatusActive, OrderStatusPartiallyFilled}:    true,
	{OrderStatusActive, OrderStatusCancelled}:          true,
	{OrderStatusPartiallyFilled, OrderStatusFilled}:    true,
	{OrderStatusPartiallyFilled, OrderStatusCancelled}: true,
}

// CanTransition reports whether moving from one status to another is
// sanctioned by the lifecycle table. Identical from/to is allowed for
// idempotency.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	return transitions[statusTransition{From: from, To: to}]
}

// ValidateTransition returns an error describing an unsanctioned change.
func ValidateTransition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("illegal status transition: %s -> %s", from, to)
	}
	return nil
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(s OrderStatus) bool {
	switch s {
	case OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

// CanCancel reports whether an order in the given status may still be
// cancelled.
func CanCancel(s OrderStatus) bool {
	return s != OrderStatusCancelled && CanTransition(s, OrderStatusCancelled)
}

// CanUpdate reports whether the price and level fields of an order may be
// edited. Only pending orders are editable; once the entry leg is working
// the legs belong to the exchange.
func CanUpdate(s OrderStatus) bool {
	return s == OrderStatusPending
}
