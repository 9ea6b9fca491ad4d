package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/freelance_market/pkg/db"
	middleware "github.com/Skotchmaster/freelance_market/pkg/middleware/auth"
)

type Deps struct {
	DB                  *gorm.DB
	OrderHandler        *OrderHTTP
	WebhookHandler      *WebhookHTTP
	ItemHandler         *ItemHTTP
	NotificationHandler *NotificationHTTP
	AdminHandler        *AdminHTTP
	JWTSecret           []byte
	AuthClient          middleware.Refresher
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB != nil {
			if err := db.Ping(c.Request().Context(), d.DB); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	e.POST("/webhooks/payment-provider", d.WebhookHandler.PaymentWebhook)

	items := e.Group("/items")
	items.GET("", d.ItemHandler.ListItems)
	items.GET("/search", d.ItemHandler.SearchItems)
	items.GET("/:id", d.ItemHandler.GetItem)
	items.POST("", d.ItemHandler.CreateItem, authMW.RequireAuth)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PATCH("/:id", d.OrderHandler.UpdateOrderStatus)
	orders.POST("/:id/confirm", d.OrderHandler.ConfirmPayment)

	notifications := e.Group("/notifications", authMW.RequireAuth)
	notifications.GET("", d.NotificationHandler.List)
	notifications.GET("/unread-count", d.NotificationHandler.UnreadCount)
	notifications.PATCH("/:id/read", d.NotificationHandler.MarkRead)
	notifications.POST("/read-all", d.NotificationHandler.MarkAllRead)

	admin := e.Group("/admin", authMW.RequireAdmin)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.GET("/orders/stats", d.AdminHandler.Stats)
}
