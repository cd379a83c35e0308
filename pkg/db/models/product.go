package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;type:text;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;check:chk_products_price,price > 0"`
	Category    string          `gorm:"column:category;type:text;not null"`
	MetalType   string          `gorm:"column:metal_type;type:text;not null"`
	Image       string          `gorm:"column:image;type:text;not null"`
	Description string          `gorm:"column:description;type:text;not null"`
	WeightGrams decimal.Decimal `gorm:"column:weight_grams;type:numeric(10,3);not null;check:chk_products_weight,weight_grams >= 0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
