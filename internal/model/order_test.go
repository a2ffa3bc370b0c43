package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderComputeTotal(t *testing.T) {
	o := &Order{
		Subtotal:       decimal.RequireFromString("100.00"),
		TaxAmount:      decimal.RequireFromString("8.25"),
		ShippingAmount: decimal.RequireFromString("5.00"),
		DiscountAmount: decimal.RequireFromString("10.00"),
	}
	assert.True(t, o.ComputeTotal().Equal(decimal.RequireFromString("103.25")))

	// Rounding lands on two decimal places.
	o = &Order{
		Subtotal:  decimal.RequireFromString("10.005"),
		TaxAmount: decimal.RequireFromString("0.004"),
	}
	assert.Equal(t, "10.01", o.ComputeTotal().StringFixed(2))
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderPaid, false},
		{OrderPending, OrderPending, false},
		{OrderProcessing, OrderPaid, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderShipped, false},
		{OrderPaid, OrderShipped, true},
		{OrderPaid, OrderCancelled, true},
		{OrderPaid, OrderRefunded, true},
		{OrderPaid, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderRefunded, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderRefunded, false},
		{OrderCancelled, OrderPending, false},
		{OrderRefunded, OrderPaid, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderPending.Terminal())
	assert.False(t, OrderShipped.Terminal())
	assert.True(t, OrderDelivered.Terminal())
	assert.True(t, OrderCancelled.Terminal())
	assert.True(t, OrderRefunded.Terminal())
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderPaid.Valid())
	assert.False(t, OrderStatus("unknown").Valid())
	assert.False(t, OrderStatus("").Valid())
}
