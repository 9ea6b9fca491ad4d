package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/notify"
	"github.com/Skotchmaster/freelance_market/internal/payment"
)

type brokenNotificationStore struct{ calls atomic.Int32 }

func (s *brokenNotificationStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.calls.Add(1)
	return errors.New("notifications table unavailable")
}

func TestWebhookSucceededThenReplay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, buyer, seller := env.placeOrder(t, 2500)

	body, sig := sign(succeededEvent("evt_1", order.ID))

	res, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookApplied, res.Outcome)
	assert.Equal(t, models.OrderStatusPaid, res.Status)
	assert.Equal(t, models.OrderStatusPaid, env.status(t, order.ID))

	buyerNotes := env.notifications(t, buyer.ID)
	require.Len(t, buyerNotes, 1)
	assert.Equal(t, models.NotificationPayment, buyerNotes[0].Type)
	require.Len(t, env.notifications(t, seller.ID), 1)

	res, err = env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookNoop, res.Outcome)
	assert.Equal(t, models.OrderStatusPaid, res.Status)

	assert.Len(t, env.notifications(t, buyer.ID), 1)
	assert.Len(t, env.notifications(t, seller.ID), 1)
	assert.Equal(t, 1, env.pendingEvents(t, models.OrderEventStatusChanged))

	ledger, err := env.Repo.WebhookEvents(ctx, payment.ProviderRazorpay, "evt_1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.WebhookApplied, ledger[0].Outcome)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	ctx := context.Background()

	t.Run("tampered body", func(t *testing.T) {
		env := newTestEnv(t)
		order, buyer, _ := env.placeOrder(t, 2500)
		_, sig := sign(succeededEvent("evt_1", order.ID))
		tampered := []byte(failedEvent("evt_1", order.ID))

		_, err := env.Hooks.HandleWebhook(ctx, tampered, sig, "")
		assert.ErrorIs(t, err, apperr.ErrSignatureInvalid)
		assert.Equal(t, models.OrderStatusPending, env.status(t, order.ID))
		assert.Empty(t, env.notifications(t, buyer.ID))
	})

	t.Run("wrong secret", func(t *testing.T) {
		env := newTestEnv(t)
		order, _, _ := env.placeOrder(t, 2500)
		body := []byte(succeededEvent("evt_1", order.ID))

		_, err := env.Hooks.HandleWebhook(ctx, body, payment.Sign("other", body), "")
		assert.ErrorIs(t, err, apperr.ErrSignatureInvalid)
		assert.Equal(t, models.OrderStatusPending, env.status(t, order.ID))
	})

	t.Run("missing signature", func(t *testing.T) {
		env := newTestEnv(t)
		order, _, _ := env.placeOrder(t, 2500)

		_, err := env.Hooks.HandleWebhook(ctx, []byte(succeededEvent("evt_1", order.ID)), "", "")
		assert.ErrorIs(t, err, apperr.ErrSignatureInvalid)
	})

	t.Run("secret not configured", func(t *testing.T) {
		env := newTestEnv(t)
		env.Hooks.Secret = ""
		order, _, _ := env.placeOrder(t, 2500)
		body := []byte(succeededEvent("evt_1", order.ID))

		_, err := env.Hooks.HandleWebhook(ctx, body, payment.Sign("", body), "")
		assert.ErrorIs(t, err, apperr.ErrSignatureInvalid)
		assert.Equal(t, models.OrderStatusPending, env.status(t, order.ID))
	})
}

func TestWebhookIgnoredEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("unhandled type", func(t *testing.T) {
		env := newTestEnv(t)
		order, _, _ := env.placeOrder(t, 2500)
		body, sig := sign(fmt.Sprintf(`{"id":"evt_x","type":"customer.created","metadata":{"orderId":%q}}`, order.ID))

		res, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
		require.NoError(t, err)
		assert.Equal(t, models.WebhookIgnored, res.Outcome)
		assert.Equal(t, models.OrderStatusPending, env.status(t, order.ID))

		ledger, err := env.Repo.WebhookEvents(ctx, payment.ProviderRazorpay, "evt_x")
		require.NoError(t, err)
		require.Len(t, ledger, 1)
		assert.Equal(t, models.WebhookIgnored, ledger[0].Outcome)
	})

	t.Run("unknown order", func(t *testing.T) {
		env := newTestEnv(t)
		body, sig := sign(succeededEvent("evt_y", uuid.New()))

		res, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
		require.NoError(t, err)
		assert.Equal(t, models.WebhookIgnored, res.Outcome)
	})

	t.Run("no order reference", func(t *testing.T) {
		env := newTestEnv(t)
		body, sig := sign(`{"id":"evt_z","type":"payment.succeeded"}`)

		res, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
		require.NoError(t, err)
		assert.Equal(t, models.WebhookIgnored, res.Outcome)
	})
}

func TestWebhookMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	body, sig := sign(`{"id":`)

	_, err := env.Hooks.HandleWebhook(context.Background(), body, sig, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestWebhookResolvesByProviderOrderID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, _, _ := env.placeOrder(t, 900)

	body, sig := sign(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_9","order_id":%q}}}}`,
		*order.PaymentID))

	res, err := env.Hooks.HandleWebhook(ctx, body, sig, "delivery-9")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookApplied, res.Outcome)
	assert.Equal(t, models.OrderStatusPaid, env.status(t, order.ID))

	ledger, err := env.Repo.WebhookEvents(ctx, payment.ProviderRazorpay, "delivery-9")
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestWebhookEmptyNotesArray(t *testing.T) {
	ctx := context.Background()

	t.Run("captured resolves by provider order id", func(t *testing.T) {
		env := newTestEnv(t)
		order, buyer, seller := env.placeOrder(t, 2500)

		body, sig := sign(fmt.Sprintf(
			`{"entity":"event","event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_n1","order_id":%q,"notes":[]}}}}`,
			*order.PaymentID))

		res, err := env.Hooks.HandleWebhook(ctx, body, sig, "delivery-n1")
		require.NoError(t, err)
		assert.Equal(t, models.WebhookApplied, res.Outcome)
		assert.Equal(t, models.OrderStatusPaid, env.status(t, order.ID))
		assert.Len(t, env.notifications(t, buyer.ID), 1)
		assert.Len(t, env.notifications(t, seller.ID), 1)
	})

	t.Run("unhandled type is ignored", func(t *testing.T) {
		env := newTestEnv(t)
		order, _, _ := env.placeOrder(t, 2500)

		body, sig := sign(fmt.Sprintf(
			`{"entity":"event","event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_n2","order_id":%q,"notes":[]}}}}`,
			*order.PaymentID))

		res, err := env.Hooks.HandleWebhook(ctx, body, sig, "delivery-n2")
		require.NoError(t, err)
		assert.Equal(t, models.WebhookIgnored, res.Outcome)
		assert.Equal(t, models.OrderStatusPending, env.status(t, order.ID))
	})
}

func TestWebhookCommitsWhenNotificationsFail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := &brokenNotificationStore{}
	env.Hooks.Notifier = notify.NewEmitter(store, time.Second)
	env.Orders.Notifier = env.Hooks.Notifier
	order, _, seller := env.placeOrder(t, 2500)

	body, sig := sign(succeededEvent("evt_nf", order.ID))
	res, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookApplied, res.Outcome)
	assert.Equal(t, models.OrderStatusPaid, env.status(t, order.ID))
	assert.Equal(t, 1, env.pendingEvents(t, models.OrderEventStatusChanged))

	got, err := env.Orders.UpdateOrderStatus(ctx, seller, order.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	assert.Equal(t, models.OrderStatusCompleted, env.status(t, order.ID))

	assert.Positive(t, store.calls.Load())
}

func TestWebhookFailedThenLateSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, buyer, seller := env.placeOrder(t, 2500)

	body, sig := sign(failedEvent("evt_f", order.ID))
	res, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookApplied, res.Outcome)
	assert.Equal(t, models.OrderStatusCancelled, env.status(t, order.ID))
	assert.Len(t, env.notifications(t, buyer.ID), 1)
	assert.Empty(t, env.notifications(t, seller.ID))

	body, sig = sign(succeededEvent("evt_s", order.ID))
	res, err = env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookNoop, res.Outcome)
	assert.Equal(t, models.OrderStatusCancelled, res.Status)
	assert.Len(t, env.notifications(t, buyer.ID), 1)
}

func TestWebhookRefund(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, buyer, seller := env.placeOrder(t, 2500)

	body, sig := sign(succeededEvent("evt_1", order.ID))
	_, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)

	body, sig = sign(fmt.Sprintf(`{"id":"evt_2","type":"payment.refunded","metadata":{"orderId":%q}}`, order.ID))
	res, err := env.Hooks.HandleWebhook(ctx, body, sig, "")
	require.NoError(t, err)
	assert.Equal(t, models.WebhookApplied, res.Outcome)
	assert.Equal(t, models.OrderStatusRefunded, env.status(t, order.ID))

	assert.Len(t, env.notifications(t, buyer.ID), 2)
	assert.Len(t, env.notifications(t, seller.ID), 2)
}

func TestWebhookConcurrentOutcomes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, buyer, seller := env.placeOrder(t, 2500)

	bodies := []string{succeededEvent("evt_ok", order.ID), failedEvent("evt_fail", order.ID)}
	results := make([]*WebhookResult, len(bodies))
	errs := make([]error, len(bodies))

	var wg sync.WaitGroup
	for i, b := range bodies {
		wg.Add(1)
		go func(i int, b string) {
			defer wg.Done()
			body, sig := sign(b)
			results[i], errs[i] = env.Hooks.HandleWebhook(ctx, body, sig, "")
		}(i, b)
	}
	wg.Wait()

	applied := 0
	for i := range bodies {
		require.NoError(t, errs[i])
		if results[i].Outcome == models.WebhookApplied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, env.pendingEvents(t, models.OrderEventStatusChanged))

	switch env.status(t, order.ID) {
	case models.OrderStatusPaid:
		assert.Len(t, env.notifications(t, buyer.ID), 1)
		assert.Len(t, env.notifications(t, seller.ID), 1)
	case models.OrderStatusCancelled:
		assert.Len(t, env.notifications(t, buyer.ID), 1)
		assert.Empty(t, env.notifications(t, seller.ID))
	default:
		t.Fatalf("unexpected final status %s", env.status(t, order.ID))
	}
}
