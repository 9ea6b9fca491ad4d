package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/outbox"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID    uuid.UUID
	Admin bool
}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, typ models.NotificationType)
}

// recordTransition moves the order inside tx and, when the guard matched,
// queues the matching order event. It reports whether the status changed.
func recordTransition(ctx context.Context, tx *repo.GormRepo, topic string, order *models.Order, to models.OrderStatus, source string, from ...models.OrderStatus) (bool, error) {
	applied, err := tx.TransitionStatus(ctx, order.ID, to, from...)
	if err != nil {
		return false, fmt.Errorf("transition order %s to %s: %w", order.ID, to, err)
	}
	if !applied {
		return false, nil
	}

	prev := order.Status
	order.Status = to
	msg, err := outbox.NewMessage(topic, outbox.OrderEvent(order, models.OrderEventStatusChanged, prev, source))
	if err != nil {
		return false, err
	}
	if err := tx.CreateOutbox(ctx, msg); err != nil {
		return false, fmt.Errorf("queue order event: %w", err)
	}
	return true, nil
}

func itemTitle(o *models.Order) string {
	if o.Item != nil && o.Item.Title != "" {
		return o.Item.Title
	}
	return "order " + o.ID.String()
}

// notifyPayment fans out the notifications for a payment-driven transition.
func notifyPayment(ctx context.Context, n Notifier, o *models.Order, to models.OrderStatus) {
	if n == nil {
		return
	}
	title := itemTitle(o)
	switch to {
	case models.OrderStatusPaid:
		n.Notify(ctx, o.BuyerID, "Payment successful", fmt.Sprintf("Your payment for %q was received.", title), models.NotificationPayment)
		n.Notify(ctx, o.SellerID, "New paid order", fmt.Sprintf("%q was purchased and paid.", title), models.NotificationOrder)
	case models.OrderStatusCancelled:
		n.Notify(ctx, o.BuyerID, "Payment failed", fmt.Sprintf("Your payment for %q did not go through. The order was cancelled.", title), models.NotificationPayment)
	case models.OrderStatusRefunded:
		n.Notify(ctx, o.BuyerID, "Payment refunded", fmt.Sprintf("Your payment for %q was refunded.", title), models.NotificationPayment)
		n.Notify(ctx, o.SellerID, "Order refunded", fmt.Sprintf("The payment for %q was refunded to the buyer.", title), models.NotificationOrder)
	}
}
