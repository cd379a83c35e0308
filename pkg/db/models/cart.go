package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the single per-user cart. Its line items are kept in Items ordered
// by Position.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_carts_user_id"`
	User      *User      `gorm:"foreignKey:UserID;references:ID;constraint:fk_carts_user,OnDelete:CASCADE"`
	Items     []CartItem `gorm:"foreignKey:CartID;references:ID;constraint:fk_cart_items_cart,OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Cart) TableName() string { return "carts" }

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// CartItem is one line of a cart. UnitPrice is captured when the line is
// added and is never re-derived from the catalog.
type CartItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID      uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product,priority:1"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_items_cart_product,priority:2"`
	Position    int             `gorm:"column:position;not null"`
	Quantity    int             `gorm:"column:quantity;not null;check:chk_cart_items_quantity,quantity >= 1"`
	WeightGrams decimal.Decimal `gorm:"column:weight_grams;type:numeric(10,3);not null;check:chk_cart_items_weight,weight_grams > 0"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;check:chk_cart_items_unit_price,unit_price > 0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartItem) TableName() string { return "cart_items" }

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
