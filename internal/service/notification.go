package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/util"
	"github.com/google/uuid"
)

type NotificationService struct {
	Repo *repo.GormRepo
}

func (s *NotificationService) List(ctx context.Context, actor Actor, unreadOnly bool, page, limit int) (util.Page, []models.Notification, error) {
	offset, limit := util.Calculate(page, limit)
	total, items, err := s.Repo.ListNotifications(ctx, actor.ID, unreadOnly, offset, limit)
	if err != nil {
		return util.Page{}, nil, err
	}
	return util.NewPage(page, limit, total), items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return s.Repo.CountUnread(ctx, actor.ID)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	ok, err := s.Repo.MarkNotificationRead(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: notification %s", apperr.ErrNotFound, id)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	return s.Repo.MarkAllNotificationsRead(ctx, actor.ID)
}
