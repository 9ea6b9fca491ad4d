package outbox

import (
	"encoding/json"
	"time"

	"github.com/Skotchmaster/freelance_market/internal/models"
)

func OrderEvent(o *models.Order, typ models.OrderEventType, from models.OrderStatus, source string) models.OrderEvent {
	return models.OrderEvent{
		Type:        typ,
		OrderID:     o.ID.String(),
		BuyerID:     o.BuyerID.String(),
		SellerID:    o.SellerID.String(),
		ItemID:      o.ItemID.String(),
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		From:        from,
		Status:      o.Status,
		Source:      source,
		OccurredAt:  time.Now().UTC(),
	}
}

func NewMessage(topic string, ev models.OrderEvent) (*models.OutboxMessage, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &models.OutboxMessage{
		Topic:   topic,
		Key:     ev.OrderID,
		Payload: payload,
		Status:  models.OutboxPending,
	}, nil
}
