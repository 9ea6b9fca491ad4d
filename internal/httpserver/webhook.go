package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/internal/payment"
	"github.com/Skotchmaster/freelance_market/internal/service"
	"github.com/Skotchmaster/freelance_market/internal/transport"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

const maxWebhookBody = 1 << 20

// delivery id headers, used when the event body carries no id
var deliveryHeaders = []string{"X-Razorpay-Event-Id", "X-Provider-Event-Id"}

type WebhookHTTP struct {
	Svc *service.WebhookService
}

// PaymentWebhook must see the body byte for byte, so it never goes through Bind.
func (h *WebhookHTTP) PaymentWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.payment")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return badRequest(l, "webhook_failed", "cannot read body", err)
	}
	if len(body) > maxWebhookBody {
		return badRequest(l, "webhook_failed", "body too large", nil)
	}

	var deliveryID string
	for _, name := range deliveryHeaders {
		if v := c.Request().Header.Get(name); v != "" {
			deliveryID = v
			break
		}
	}

	res, err := h.Svc.HandleWebhook(ctx, body, c.Request().Header.Get(payment.SignatureHeader), deliveryID)
	if err != nil {
		return respondErr(l, "webhook_failed", err)
	}
	return c.JSON(http.StatusOK, transport.WebhookResponse{Received: true, Outcome: string(res.Outcome)})
}
