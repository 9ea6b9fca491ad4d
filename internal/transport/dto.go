package transport

import (
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/util"
)

type CreateOrderRequest struct {
	ItemID string `json:"itemId"`
}

type CreateOrderResponse struct {
	Order        *models.Order `json:"order"`
	ClientSecret string        `json:"clientSecret"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

type OrdersResponse struct {
	Orders     []models.Order `json:"orders"`
	Pagination util.Page      `json:"pagination"`
}

type CreateItemRequest struct {
	Kind        models.ItemKind `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       int64           `json:"price"`
	Currency    string          `json:"currency"`
}

type ItemsResponse struct {
	Items      []models.Item `json:"items"`
	Pagination util.Page     `json:"pagination"`
}

type NotificationsResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    util.Page             `json:"pagination"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}

type OrderStats struct {
	TotalOrders int64                        `json:"totalOrders"`
	ByStatus    map[models.OrderStatus]int64 `json:"byStatus"`
	Revenue     map[string]int64             `json:"revenue"`
}
