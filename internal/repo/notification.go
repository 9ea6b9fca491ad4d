package repo

import (
	"context"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *GormRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *GormRepo) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) (int64, []models.Notification, error) {
	q := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Notification, 0, limit)
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkNotificationRead reports false when the notification does not exist or
// belongs to someone else.
func (r *GormRepo) MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	var n models.Notification
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&n)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if n.Read {
		return true, nil
	}
	err := r.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
	return err == nil, err
}

func (r *GormRepo) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
