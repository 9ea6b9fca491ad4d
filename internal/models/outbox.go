package models

import "time"

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxDone    OutboxStatus = "done"
)

// OutboxMessage is written in the same transaction as the order change it
// describes and later relayed to the message broker.
type OutboxMessage struct {
	ID          int64        `gorm:"primaryKey;autoIncrement"`
	Topic       string       `gorm:"size:128;not null"`
	Key         string       `gorm:"size:128;not null"`
	Payload     []byte       `gorm:"not null"`
	Status      OutboxStatus `gorm:"size:16;index;not null;default:pending"`
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (OutboxMessage) TableName() string {
	return "order_outboxes"
}

type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order_created"
	OrderEventStatusChanged OrderEventType = "order_status_changed"
)

// OrderEvent is the payload published for every committed order change.
type OrderEvent struct {
	Type        OrderEventType `json:"type"`
	OrderID     string         `json:"orderId"`
	BuyerID     string         `json:"buyerId"`
	SellerID    string         `json:"sellerId"`
	ItemID      string         `json:"itemId"`
	TotalAmount int64          `json:"totalAmount"`
	Currency    string         `json:"currency"`
	From        OrderStatus    `json:"from,omitempty"`
	Status      OrderStatus    `json:"status"`
	Source      string         `json:"source"`
	OccurredAt  time.Time      `json:"occurredAt"`
}
