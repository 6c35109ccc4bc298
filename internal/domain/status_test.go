package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusActive},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusPending, OrderStatusRejected},
		{OrderStatusActive, OrderStatusPartiallyFilled},
		{OrderStatusActive, OrderStatusCancelled},
		{OrderStatusPartiallyFilled, OrderStatusFilled},
		{OrderStatusPartiallyFilled, OrderStatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
		assert.NoError(t, ValidateTransition(tt.from, tt.to))
	}

	denied := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusFilled},
		{OrderStatusPending, OrderStatusPartiallyFilled},
		{OrderStatusActive, OrderStatusPending},
		{OrderStatusFilled, OrderStatusCancelled},
		{OrderStatusFilled, OrderStatusActive},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusActive},
		{OrderStatusRejected, OrderStatusCancelled},
		{OrderStatusRejected, OrderStatusActive},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
		assert.Error(t, ValidateTransition(tt.from, tt.to))
	}
}

func TestCanTransition_SameStatusIsIdempotent(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusActive, OrderStatusPartiallyFilled,
		OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected,
	} {
		assert.True(t, CanTransition(s, s))
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(OrderStatusFilled))
	assert.True(t, IsTerminal(OrderStatusCancelled))
	assert.True(t, IsTerminal(OrderStatusRejected))

	assert.False(t, IsTerminal(OrderStatusPending))
	assert.False(t, IsTerminal(OrderStatusActive))
	assert.False(t, IsTerminal(OrderStatusPartiallyFilled))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(OrderStatusPending))
	assert.True(t, CanCancel(OrderStatusActive))
	assert.True(t, CanCancel(OrderStatusPartiallyFilled))

	assert.False(t, CanCancel(OrderStatusFilled))
	assert.False(t, CanCancel(OrderStatusCancelled))
	assert.False(t, CanCancel(OrderStatusRejected))
}

func TestCanUpdate(t *testing.T) {
	assert.True(t, CanUpdate(OrderStatusPending))

	for _, s := range []OrderStatus{
		OrderStatusActive, OrderStatusPartiallyFilled,
		OrderStatusFilled, OrderStatusCancelled, OrderStatusRejected,
	} {
		assert.False(t, CanUpdate(s), "%s should not be editable", s)
	}
}
