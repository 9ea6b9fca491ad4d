package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemKind string

const (
	ItemKindProject ItemKind = "project"
	ItemKindProduct ItemKind = "product"
)

// Item is a purchasable listing: a freelance project or a digital product.
type Item struct {
	ID          uuid.UUID `gorm:"primaryKey"                                        json:"id"`
	AuthorID    uuid.UUID `gorm:"index;not null"                                    json:"authorId"`
	Kind        ItemKind  `gorm:"size:16;not null;default:product"                  json:"kind"`
	Title       string    `gorm:"size:200;not null"                                 json:"title"`
	Description string    `gorm:"not null;default:''"                               json:"description"`
	Price       int64     `gorm:"not null;check:chk_items_price_positive,price > 0" json:"price"`
	Currency    string    `gorm:"size:3;not null"                                   json:"currency"`
	CreatedAt   time.Time `gorm:"index"                                             json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (Item) TableName() string {
	return "items"
}
