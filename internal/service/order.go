package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/outbox"
	"github.com/Skotchmaster/freelance_market/internal/payment"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/util"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
	"github.com/google/uuid"
)

type OrderService struct {
	Repo           *repo.GormRepo
	Gateway        payment.Gateway
	Notifier       Notifier
	Topic          string
	PaymentTimeout time.Duration
}

type ListOrdersQuery struct {
	AsSeller bool
	Status   models.OrderStatus
	Page     int
	Limit    int
}

// CreateOrder persists a PENDING order before asking the provider for a
// payment, so every provider object can be traced back to a local order.
func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, itemID uuid.UUID) (*models.Order, string, error) {
	l := logging.FromContext(ctx).With("op", "create_order", "item_id", itemID.String())

	item, err := s.Repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, "", err
	}
	if item.AuthorID == actor.ID {
		return nil, "", fmt.Errorf("%w: cannot purchase your own item", apperr.ErrInvalidOperation)
	}

	order := &models.Order{
		ID:          uuid.New(),
		BuyerID:     actor.ID,
		SellerID:    item.AuthorID,
		ItemID:      item.ID,
		TotalAmount: item.Price,
		Currency:    item.Currency,
		Status:      models.OrderStatusPending,
		Provider:    s.Gateway.Name(),
	}

	err = s.Repo.Transact(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		msg, err := outbox.NewMessage(s.Topic, outbox.OrderEvent(order, models.OrderEventCreated, "", "api"))
		if err != nil {
			return err
		}
		return tx.CreateOutbox(ctx, msg)
	})
	if err != nil {
		return nil, "", fmt.Errorf("create order: %w", err)
	}
	order.Item = item

	pctx, cancel := context.WithTimeout(ctx, s.paymentTimeout())
	defer cancel()

	intent, err := s.Gateway.CreatePaymentIntent(pctx, order.TotalAmount, order.Currency, payment.Metadata{
		OrderID:  order.ID.String(),
		ItemID:   item.ID.String(),
		BuyerID:  actor.ID.String(),
		SellerID: item.AuthorID.String(),
	})
	if err != nil {
		l.Warn("payment_intent_failed", "order_id", order.ID.String(), "error", err)
		if errors.Is(err, apperr.ErrPaymentProvider) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: %v", apperr.ErrPaymentProvider, err)
	}

	stored, err := s.Repo.SetPaymentID(ctx, order.ID, intent.ProviderOrderID)
	if err != nil {
		return nil, "", fmt.Errorf("store payment id: %w", err)
	}
	if !stored {
		return nil, "", fmt.Errorf("%w: order %s already has a payment", apperr.ErrConflict, order.ID)
	}
	order.PaymentID = &intent.ProviderOrderID

	l.Info("order_created", "order_id", order.ID.String(), "provider", s.Gateway.Name())
	return order, intent.ClientSecret, nil
}

func (s *OrderService) ListOrders(ctx context.Context, actor Actor, q ListOrdersQuery) (util.Page, []models.Order, error) {
	if q.Status != "" && !q.Status.Valid() {
		return util.Page{}, nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, q.Status)
	}

	f := repo.OrderFilter{Status: q.Status}
	if q.AsSeller {
		f.SellerID = &actor.ID
	} else {
		f.BuyerID = &actor.ID
	}

	offset, limit := util.Calculate(q.Page, q.Limit)
	total, orders, err := s.Repo.ListOrders(ctx, f, offset, limit)
	if err != nil {
		return util.Page{}, nil, err
	}
	return util.NewPage(q.Page, limit, total), orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && order.BuyerID != actor.ID && order.SellerID != actor.ID {
		return nil, fmt.Errorf("%w: order %s", apperr.ErrForbidden, id)
	}
	return order, nil
}

// UpdateOrderStatus lets the seller or an admin move an order forward.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor Actor, id uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, next)
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && order.SellerID != actor.ID {
		return nil, fmt.Errorf("%w: only the seller or an admin can update order %s", apperr.ErrForbidden, id)
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", apperr.ErrInvalidOperation, order.Status, next)
	}

	current := order.Status
	source := "seller"
	if actor.Admin && order.SellerID != actor.ID {
		source = "admin"
	}

	var applied bool
	err = s.Repo.Transact(ctx, func(tx *repo.GormRepo) error {
		var err error
		applied, err = recordTransition(ctx, tx, s.Topic, order, next, source, current)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: order %s changed concurrently", apperr.ErrConflict, id)
	}

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, order.BuyerID, "Order updated",
			fmt.Sprintf("Your order for %q is now %s.", itemTitle(order), next), models.NotificationOrder)
	}

	logging.FromContext(ctx).Info("order_status_updated", "order_id", id.String(), "from", string(current), "to", string(next))
	return s.Repo.GetOrder(ctx, id)
}

// ConfirmPayment applies a checkout-side confirmation signed by the provider.
// It shares the idempotent path of the webhook: a late or repeated call is a no-op.
func (s *OrderService) ConfirmPayment(ctx context.Context, actor Actor, id uuid.UUID, paymentID, signature string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("op", "confirm_payment", "order_id", id.String())

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actor.ID {
		return nil, fmt.Errorf("%w: only the buyer can confirm order %s", apperr.ErrForbidden, id)
	}
	if order.PaymentID == nil {
		return nil, fmt.Errorf("%w: order %s has no payment", apperr.ErrInvalidOperation, id)
	}
	if !s.Gateway.VerifyClientConfirmation(*order.PaymentID, paymentID, signature) {
		l.Warn("payment_confirmation_rejected", "reason", "signature mismatch")
		return nil, fmt.Errorf("%w: payment confirmation", apperr.ErrSignatureInvalid)
	}

	var applied bool
	err = s.Repo.Transact(ctx, func(tx *repo.GormRepo) error {
		var err error
		applied, err = recordTransition(ctx, tx, s.Topic, order, models.OrderStatusPaid, "client_confirmation",
			models.PredecessorsOf(models.OrderStatusPaid)...)
		return err
	})
	if err != nil {
		return nil, err
	}

	if applied {
		notifyPayment(ctx, s.Notifier, order, models.OrderStatusPaid)
		l.Info("payment_confirmed")
	} else {
		l.Info("payment_confirmation_noop", "status", string(order.Status))
	}
	return s.Repo.GetOrder(ctx, id)
}

func (s *OrderService) paymentTimeout() time.Duration {
	if s.PaymentTimeout <= 0 {
		return 10 * time.Second
	}
	return s.PaymentTimeout
}
