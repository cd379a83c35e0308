package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the immutable snapshot written at checkout.
type Order struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:idx_orders_user_created,priority:1;uniqueIndex:ux_orders_user_idempotency_key,priority:1"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount        decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;check:chk_orders_discount,discount >= 0"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;check:chk_orders_total,total_amount >= 0"`
	CouponCode      *string         `gorm:"column:coupon_code;type:text"`
	IdempotencyKey  *string         `gorm:"column:idempotency_key;type:text;uniqueIndex:ux_orders_user_idempotency_key,priority:2"`
	DeliveryName    string          `gorm:"column:delivery_name;type:text;not null"`
	DeliveryContact string          `gorm:"column:delivery_contact;type:text;not null"`
	DeliveryAddress string          `gorm:"column:delivery_address;type:text;not null"`
	DeliveryCity    string          `gorm:"column:delivery_city;type:text;not null"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;references:ID;constraint:fk_order_items_order,OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_orders_user_created,priority:2"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem is one snapshot line of an order.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Position     int             `gorm:"column:position;not null"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string          `gorm:"column:product_name;type:text;not null"`
	Quantity     int             `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity >= 1"`
	WeightGrams  decimal.Decimal `gorm:"column:weight_grams;type:numeric(10,3);not null"`
	CatalogPrice decimal.Decimal `gorm:"column:catalog_price;type:numeric(12,2);not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal    decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
