package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
)

func TestNotificationService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &NotificationService{Repo: env.Repo}

	order, buyer, seller := env.placeOrder(t, 2500)
	body, sig := sign(succeededEvent("evt_1", order.ID))
	_, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	_, err = env.Orders.UpdateOrderStatus(ctx, seller, order.ID, "COMPLETED")
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	page, items, err := svc.List(ctx, buyer, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), page.Total)

	require.NoError(t, svc.MarkRead(ctx, buyer, items[0].ID))
	require.NoError(t, svc.MarkRead(ctx, buyer, items[0].ID))
	assert.ErrorIs(t, svc.MarkRead(ctx, seller, items[1].ID), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, buyer, uuid.New()), apperr.ErrNotFound)

	count, err = svc.UnreadCount(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	n, err := svc.MarkAllRead(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, items, err = svc.List(ctx, buyer, true, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	count, err = svc.UnreadCount(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
