package models

import "time"

type WebhookOutcome string

const (
	WebhookApplied WebhookOutcome = "applied"
	WebhookNoop    WebhookOutcome = "noop"
	WebhookIgnored WebhookOutcome = "ignored"
)

// WebhookEvent records each verified provider delivery for audit.
type WebhookEvent struct {
	ID              int64          `gorm:"primaryKey;autoIncrement"                          json:"id"`
	Provider        string         `gorm:"size:32;not null;uniqueIndex:idx_webhook_provider_event"  json:"provider"`
	ProviderEventID string         `gorm:"size:128;not null;uniqueIndex:idx_webhook_provider_event" json:"providerEventId"`
	EventType       string         `gorm:"size:64;not null"                                  json:"eventType"`
	OrderID         string         `gorm:"size:64;index"                                     json:"orderId"`
	Outcome         WebhookOutcome `gorm:"size:16;not null"                                  json:"outcome"`
	ProcessedAt     time.Time      `gorm:"not null"                                          json:"processedAt"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
