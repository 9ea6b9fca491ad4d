package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/internal/service"
	"github.com/Skotchmaster/freelance_market/internal/transport"
	"github.com/Skotchmaster/freelance_market/internal/util"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

type ItemHTTP struct {
	Svc *service.ItemService
}

func (h *ItemHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.create")

	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	var req transport.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_item_failed", "invalid body", err)
	}

	item, err := h.Svc.CreateItem(ctx, actor, req)
	if err != nil {
		return respondErr(l, "create_item_failed", err)
	}

	l.Info("create_item_success", "item_id", item.ID.String())
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.get")

	id, err := parseID(c)
	if err != nil {
		return badRequest(l, "get_item_failed", "id is not a uuid", err)
	}
	item, err := h.Svc.GetItem(ctx, id)
	if err != nil {
		return respondErr(l, "get_item_failed", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ItemHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	p, items, err := h.Svc.ListItems(ctx, page, limit)
	if err != nil {
		return respondErr(l, "list_items_failed", err)
	}
	return c.JSON(http.StatusOK, transport.ItemsResponse{Items: items, Pagination: p})
}

func (h *ItemHTTP) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)

	p, items, err := h.Svc.SearchItems(ctx, c.QueryParam("q"), page, limit)
	if err != nil {
		return respondErr(l, "search_items_failed", err)
	}
	return c.JSON(http.StatusOK, transport.ItemsResponse{Items: items, Pagination: p})
}
