package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/payment"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
	"github.com/google/uuid"
)

type WebhookService struct {
	Repo     *repo.GormRepo
	Gateway  payment.Gateway
	Notifier Notifier
	Secret   string
	Topic    string
}

type WebhookResult struct {
	Outcome models.WebhookOutcome
	OrderID string
	Status  models.OrderStatus
}

var eventTargets = map[payment.EventKind]models.OrderStatus{
	payment.EventSucceeded: models.OrderStatusPaid,
	payment.EventFailed:    models.OrderStatusCancelled,
	payment.EventRefunded:  models.OrderStatusRefunded,
}

// HandleWebhook verifies, classifies and applies one provider delivery.
// deliveryID is the provider's delivery header, used when the body has no event id.
func (s *WebhookService) HandleWebhook(ctx context.Context, body []byte, signature, deliveryID string) (*WebhookResult, error) {
	l := logging.FromContext(ctx).With("op", "payment_webhook", "provider", s.Gateway.Name())

	if s.Secret == "" {
		l.Error("webhook_rejected", "reason", "webhook secret not configured")
		return nil, fmt.Errorf("%w: webhook secret not configured", apperr.ErrSignatureInvalid)
	}
	if !payment.VerifySignature(s.Secret, body, signature) {
		l.Warn("webhook_rejected", "reason", "signature mismatch")
		return nil, fmt.Errorf("%w: webhook", apperr.ErrSignatureInvalid)
	}

	ev, err := s.Gateway.ParseEvent(body)
	if err != nil {
		l.Warn("webhook_rejected", "reason", "unparseable body", "error", err)
		return nil, err
	}
	if ev.ID == "" {
		ev.ID = deliveryID
	}
	l = l.With("event_id", ev.ID, "event_type", ev.Type)

	target, known := eventTargets[ev.Kind]
	if !known {
		l.Info("webhook_ignored", "reason", "unhandled event type")
		s.ledger(ctx, ev, "", models.WebhookIgnored)
		return &WebhookResult{Outcome: models.WebhookIgnored}, nil
	}

	order, err := s.resolveOrder(ctx, ev)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			l.Warn("webhook_ignored", "reason", "order not found", "order_ref", ev.OrderID, "provider_order_id", ev.ProviderOrderID)
			s.ledger(ctx, ev, ev.OrderID, models.WebhookIgnored)
			return &WebhookResult{Outcome: models.WebhookIgnored}, nil
		}
		return nil, err
	}
	l = l.With("order_id", order.ID.String())

	var applied bool
	err = s.Repo.Transact(ctx, func(tx *repo.GormRepo) error {
		var err error
		applied, err = recordTransition(ctx, tx, s.Topic, order, target, "webhook:"+ev.Type, models.PredecessorsOf(target)...)
		if err != nil {
			return err
		}
		if ev.ID == "" {
			return nil
		}
		outcome := models.WebhookNoop
		if applied {
			outcome = models.WebhookApplied
		}
		_, err = tx.RecordWebhookEvent(ctx, &models.WebhookEvent{
			Provider:        s.Gateway.Name(),
			ProviderEventID: ev.ID,
			EventType:       ev.Type,
			OrderID:         order.ID.String(),
			Outcome:         outcome,
			ProcessedAt:     time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		l.Error("webhook_apply_failed", "error", err)
		return nil, fmt.Errorf("%w: apply webhook: %v", apperr.ErrInternal, err)
	}

	if !applied {
		if fresh, err := s.Repo.GetOrder(ctx, order.ID); err == nil {
			order = fresh
		}
		l.Info("webhook_noop", "status", string(order.Status), "target", string(target))
		return &WebhookResult{Outcome: models.WebhookNoop, OrderID: order.ID.String(), Status: order.Status}, nil
	}

	notifyPayment(ctx, s.Notifier, order, target)
	l.Info("webhook_applied", "status", string(target))
	return &WebhookResult{Outcome: models.WebhookApplied, OrderID: order.ID.String(), Status: target}, nil
}

// resolveOrder prefers the order id carried in provider metadata and falls
// back to the provider's own reference.
func (s *WebhookService) resolveOrder(ctx context.Context, ev *payment.Event) (*models.Order, error) {
	if id, err := uuid.Parse(ev.OrderID); err == nil {
		order, err := s.Repo.GetOrder(ctx, id)
		if err == nil || !errors.Is(err, apperr.ErrNotFound) || ev.ProviderOrderID == "" {
			return order, err
		}
	}
	if ev.ProviderOrderID == "" {
		return nil, fmt.Errorf("%w: event carries no order reference", apperr.ErrNotFound)
	}
	order, err := s.Repo.GetOrderByPaymentID(ctx, ev.ProviderOrderID)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetOrder(ctx, order.ID)
}

// ledger records deliveries that never reach the transition transaction.
func (s *WebhookService) ledger(ctx context.Context, ev *payment.Event, orderID string, outcome models.WebhookOutcome) {
	if ev.ID == "" {
		return
	}
	_, err := s.Repo.RecordWebhookEvent(ctx, &models.WebhookEvent{
		Provider:        s.Gateway.Name(),
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		OrderID:         orderID,
		Outcome:         outcome,
		ProcessedAt:     time.Now().UTC(),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("webhook_ledger_failed", "event_id", ev.ID, "error", err)
	}
}
