package repo

import (
	"context"

	"github.com/Skotchmaster/freelance_market/internal/models"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Transact runs fn inside one database transaction. The repo handed to fn is
// bound to the transaction and must be the only one used inside it.
func (r *GormRepo) Transact(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Item{},
		&models.Order{},
		&models.Notification{},
		&models.OutboxMessage{},
		&models.WebhookEvent{},
	)
}
