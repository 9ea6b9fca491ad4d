package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/service"
	"github.com/Skotchmaster/freelance_market/internal/transport"
	"github.com/Skotchmaster/freelance_market/internal/util"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	p, orders, err := h.Svc.ListOrders(ctx, models.OrderStatus(c.QueryParam("status")), page, limit)
	if err != nil {
		return respondErr(l, "admin_list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, transport.OrdersResponse{Orders: orders, Pagination: p})
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		return respondErr(l, "admin_stats_failed", err)
	}
	return c.JSON(http.StatusOK, stats)
}
