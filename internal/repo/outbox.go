package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/freelance_market/internal/models"
)

func (r *GormRepo) CreateOutbox(ctx context.Context, msg *models.OutboxMessage) error {
	if msg.Status == "" {
		msg.Status = models.OutboxPending
	}
	return r.DB.WithContext(ctx).Create(msg).Error
}

func (r *GormRepo) PendingOutbox(ctx context.Context, limit int) ([]models.OutboxMessage, error) {
	var msgs []models.OutboxMessage
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.OutboxPending).
		Order("id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

func (r *GormRepo) MarkOutboxDone(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Model(&models.OutboxMessage{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":       models.OutboxDone,
			"published_at": time.Now().UTC(),
		}).Error
}
