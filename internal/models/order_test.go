package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := map[[2]OrderStatus]bool{
		{OrderStatusPending, OrderStatusPaid}:      true,
		{OrderStatusPaid, OrderStatusCompleted}:    true,
		{OrderStatusPending, OrderStatusCancelled}: true,
		{OrderStatusPaid, OrderStatusRefunded}:     true,
	}

	for _, from := range AllOrderStatuses {
		for _, to := range AllOrderStatuses {
			want := allowed[[2]OrderStatus{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, OrderStatusPending.Terminal())
	assert.False(t, OrderStatusPaid.Terminal())
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.True(t, OrderStatusRefunded.Terminal())
	assert.False(t, OrderStatus("SHIPPED").Terminal())
	assert.False(t, OrderStatus("SHIPPED").Valid())
}

func TestPredecessorsOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []OrderStatus{OrderStatusPending}, PredecessorsOf(OrderStatusPaid))
	assert.Equal(t, []OrderStatus{OrderStatusPending}, PredecessorsOf(OrderStatusCancelled))
	assert.Equal(t, []OrderStatus{OrderStatusPaid}, PredecessorsOf(OrderStatusRefunded))
	assert.Equal(t, []OrderStatus{OrderStatusPaid}, PredecessorsOf(OrderStatusCompleted))
	assert.Empty(t, PredecessorsOf(OrderStatusPending))
}
