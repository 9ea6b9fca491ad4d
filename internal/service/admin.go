package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/Skotchmaster/freelance_market/internal/repo"
	"github.com/Skotchmaster/freelance_market/internal/transport"
	"github.com/Skotchmaster/freelance_market/internal/util"
)

type AdminService struct {
	Repo *repo.GormRepo
}

func (s *AdminService) ListOrders(ctx context.Context, status models.OrderStatus, page, limit int) (util.Page, []models.Order, error) {
	if status != "" && !status.Valid() {
		return util.Page{}, nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, status)
	}
	offset, limit := util.Calculate(page, limit)
	total, orders, err := s.Repo.ListOrders(ctx, repo.OrderFilter{Status: status}, offset, limit)
	if err != nil {
		return util.Page{}, nil, err
	}
	return util.NewPage(page, limit, total), orders, nil
}

// Stats counts orders per status. Revenue sums paid and completed orders per currency.
func (s *AdminService) Stats(ctx context.Context) (*transport.OrderStats, error) {
	rows, err := s.Repo.OrderTotalsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	out := &transport.OrderStats{
		ByStatus: make(map[models.OrderStatus]int64, len(models.AllOrderStatuses)),
		Revenue:  map[string]int64{},
	}
	for _, st := range models.AllOrderStatuses {
		out.ByStatus[st] = 0
	}
	for _, r := range rows {
		out.TotalOrders += r.Count
		out.ByStatus[r.Status] += r.Count
		if r.Status == models.OrderStatusPaid || r.Status == models.OrderStatusCompleted {
			out.Revenue[r.Currency] += r.Amount
		}
	}
	return out, nil
}
