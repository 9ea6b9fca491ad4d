package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/service"
	"github.com/Skotchmaster/freelance_market/internal/transport"
	"github.com/Skotchmaster/freelance_market/internal/util"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_failed", "invalid body", err)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return badRequest(l, "create_order_failed", "itemId is not a uuid", err)
	}

	order, secret, err := h.Svc.CreateOrder(ctx, actor, itemID)
	if err != nil {
		return respondErr(l, "create_order_failed", err)
	}

	l.Info("create_order_success", "order_id", order.ID.String())
	return c.JSON(http.StatusCreated, transport.CreateOrderResponse{Order: order, ClientSecret: secret})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	q := service.ListOrdersQuery{
		AsSeller: c.QueryParam("as") == "seller",
		Status:   models.OrderStatus(c.QueryParam("status")),
		Page:     util.ParseIntDefault(c.QueryParam("page"), 1),
		Limit:    util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize),
	}
	page, orders, err := h.Svc.ListOrders(ctx, actor, q)
	if err != nil {
		return respondErr(l, "list_orders_failed", err)
	}
	return c.JSON(http.StatusOK, transport.OrdersResponse{Orders: orders, Pagination: page})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "get_order_failed", "id is not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, actor, id)
	if err != nil {
		return respondErr(l, "get_order_failed", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "update_order_failed", "id is not a uuid", err)
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_failed", "invalid body", err)
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, actor, id, req.Status)
	if err != nil {
		return respondErr(l, "update_order_failed", err)
	}

	l.Info("update_order_success", "order_id", id.String(), "status", string(order.Status))
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.confirm_payment")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "confirm_payment_failed", "id is not a uuid", err)
	}

	var req transport.ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "confirm_payment_failed", "invalid body", err)
	}
	if req.PaymentID == "" || req.Signature == "" {
		return badRequest(l, "confirm_payment_failed", "paymentId and signature are required", nil)
	}

	order, err := h.Svc.ConfirmPayment(ctx, actor, id, req.PaymentID, req.Signature)
	if err != nil {
		return respondErr(l, "confirm_payment_failed", err)
	}
	return c.JSON(http.StatusOK, order)
}
