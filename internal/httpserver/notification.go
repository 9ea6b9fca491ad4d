package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/internal/service"
	"github.com/Skotchmaster/freelance_market/internal/transport"
	"github.com/Skotchmaster/freelance_market/internal/util"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

type NotificationHTTP struct {
	Svc *service.NotificationService
}

func (h *NotificationHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.list")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	unread := c.QueryParam("unread") == "true"

	p, items, err := h.Svc.List(ctx, actor, unread, page, limit)
	if err != nil {
		return respondErr(l, "list_notifications_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NotificationsResponse{Notifications: items, Pagination: p})
}

func (h *NotificationHTTP) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.unread_count")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.UnreadCount(ctx, actor)
	if err != nil {
		return respondErr(l, "unread_count_failed", err)
	}
	return c.JSON(http.StatusOK, transport.UnreadCountResponse{Count: n})
}

func (h *NotificationHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_read")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "mark_read_failed", "id is not a uuid", err)
	}
	if err := h.Svc.MarkRead(ctx, actor, id); err != nil {
		return respondErr(l, "mark_read_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHTTP) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_all_read")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkAllRead(ctx, actor)
	if err != nil {
		return respondErr(l, "mark_all_read_failed", err)
	}
	return c.JSON(http.StatusOK, transport.UnreadCountResponse{Count: n})
}
