package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationOrder   NotificationType = "ORDER"
	NotificationPayment NotificationType = "PAYMENT"
	NotificationSystem  NotificationType = "SYSTEM"
)

type Notification struct {
	ID        uuid.UUID        `gorm:"primaryKey"                 json:"id"`
	UserID    uuid.UUID        `gorm:"index:idx_notifications_user_read;not null" json:"userId"`
	Title     string           `gorm:"size:200;not null"          json:"title"`
	Message   string           `gorm:"not null"                   json:"message"`
	Type      NotificationType `gorm:"size:16;not null"           json:"type"`
	Read      bool             `gorm:"index:idx_notifications_user_read;not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"index"                      json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}
