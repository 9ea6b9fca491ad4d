package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// transitions lists the only legal forward edges of the order lifecycle.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusCompleted, OrderStatusRefunded},
}

func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range transitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// PredecessorsOf returns every status that may move directly to target.
// Used as the guard of conditional updates.
func PredecessorsOf(target OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, from := range AllOrderStatuses {
		if from.CanTransitionTo(target) {
			out = append(out, from)
		}
	}
	return out
}

type Order struct {
	ID          uuid.UUID   `gorm:"primaryKey"                                            json:"id"`
	BuyerID     uuid.UUID   `gorm:"index;not null;uniqueIndex:idx_orders_buyer_payment"   json:"buyerId"`
	SellerID    uuid.UUID   `gorm:"index;not null"                                        json:"sellerId"`
	ItemID      uuid.UUID   `gorm:"index;not null"                                        json:"itemId"`
	TotalAmount int64       `gorm:"not null;check:chk_orders_total_positive,total_amount > 0" json:"totalAmount"`
	Currency    string      `gorm:"size:3;not null"                                       json:"currency"`
	Status      OrderStatus `gorm:"size:16;index;not null"                                json:"status"`
	PaymentID   *string     `gorm:"size:128;uniqueIndex:idx_orders_buyer_payment"         json:"paymentId"`
	Provider    string      `gorm:"size:32;not null"                                      json:"provider"`
	CreatedAt   time.Time   `gorm:"index"                                                 json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"item,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}
