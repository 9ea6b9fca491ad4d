// Package notify writes in-app notifications as a best-effort side effect.
package notify

import (
	"context"
	"time"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
	"github.com/google/uuid"
)

type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type Emitter struct {
	Store   Store
	Timeout time.Duration
}

func NewEmitter(store Store, timeout time.Duration) *Emitter {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Emitter{Store: store, Timeout: timeout}
}

// Notify never fails the caller. The write is detached from request
// cancellation so a client hanging up does not drop the notification.
func (e *Emitter) Notify(ctx context.Context, userID uuid.UUID, title, message string, typ models.NotificationType) {
	l := logging.FromContext(ctx).With("component", "notify", "user_id", userID.String(), "type", string(typ))

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.Timeout)
	defer cancel()

	n := &models.Notification{UserID: userID, Title: title, Message: message, Type: typ}
	if err := e.Store.CreateNotification(wctx, n); err != nil {
		l.Error("notification_write_failed", "error", err)
		return
	}
	l.Debug("notification_written", "notification_id", n.ID.String())
}
