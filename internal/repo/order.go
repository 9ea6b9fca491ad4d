package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
	"github.com/Skotchmaster/freelance_market/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderFilter struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   models.OrderStatus
}

type StatusTotal struct {
	Status   models.OrderStatus
	Currency string
	Count    int64
	Amount   int64
}

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Item").Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrderByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Where("payment_id = ?", paymentID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order with payment %s", apperr.ErrNotFound, paymentID)
		}
		return nil, err
	}
	return &order, nil
}

// SetPaymentID stores the provider reference once. It reports false when the
// order already carries one.
func (r *GormRepo) SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_id IS NULL", id).
		Update("payment_id", paymentID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TransitionStatus moves the order to `to` only while its current status is
// one of `from`. Losing a race, or a repeated delivery, reports false.
func (r *GormRepo) TransitionStatus(ctx context.Context, id uuid.UUID, to models.OrderStatus, from ...models.OrderStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.BuyerID != nil {
		q = q.Where("buyer_id = ?", *f.BuyerID)
	}
	if f.SellerID != nil {
		q = q.Where("seller_id = ?", *f.SellerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	if err := q.Preload("Item").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) OrderTotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	if err := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, currency, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Group("status, currency").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
