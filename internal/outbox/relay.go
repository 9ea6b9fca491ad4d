// Package outbox relays committed order events to the message broker.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/mykafka"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

type Store interface {
	PendingOutbox(ctx context.Context, limit int) ([]models.OutboxMessage, error)
	MarkOutboxDone(ctx context.Context, ids []int64) error
}

type Publisher interface {
	Publish(ctx context.Context, msgs ...mykafka.Message) error
}

type Relay struct {
	Store     Store
	Publisher Publisher
	Batch     int
	Interval  time.Duration
}

func NewRelay(store Store, pub Publisher, batch int, interval time.Duration) *Relay {
	if batch <= 0 {
		batch = 100
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{Store: store, Publisher: pub, Batch: batch, Interval: interval}
}

// RelayOnce publishes one batch of pending messages in insertion order.
// Delivery is at-least-once: a crash between publish and mark resends the batch.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	pending, err := r.Store.PendingOutbox(ctx, r.Batch)
	if err != nil {
		return 0, fmt.Errorf("load pending outbox: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	msgs := make([]mykafka.Message, len(pending))
	ids := make([]int64, len(pending))
	for i, m := range pending {
		msgs[i] = mykafka.Message{Topic: m.Topic, Key: []byte(m.Key), Value: m.Payload}
		ids[i] = m.ID
	}

	if err := r.Publisher.Publish(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish outbox: %w", err)
	}
	if err := r.Store.MarkOutboxDone(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark outbox done: %w", err)
	}
	return len(pending), nil
}

// Drain relays until nothing is pending.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil || n < r.Batch {
			return total, err
		}
	}
}

func (r *Relay) Run(ctx context.Context) {
	l := logging.FromContext(ctx).With("component", "outbox_relay")
	l.Info("outbox_relay_started", "interval", r.Interval.String(), "batch", r.Batch)

	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Info("outbox_relay_stopped")
			return
		case <-t.C:
			n, err := r.Drain(ctx)
			if err != nil {
				l.Error("outbox_relay_failed", "error", err)
				continue
			}
			if n > 0 {
				l.Info("outbox_relayed", "count", n)
			}
		}
	}
}
