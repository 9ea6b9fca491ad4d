package repo

import (
	"context"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"gorm.io/gorm/clause"
)

// RecordWebhookEvent appends to the delivery ledger. It reports false when
// the provider already delivered an event with the same id.
func (r *GormRepo) RecordWebhookEvent(ctx context.Context, ev *models.WebhookEvent) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) WebhookEvents(ctx context.Context, provider, providerEventID string) ([]models.WebhookEvent, error) {
	var out []models.WebhookEvent
	err := r.DB.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		Find(&out).Error
	return out, err
}
