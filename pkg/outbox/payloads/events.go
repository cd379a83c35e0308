package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is emitted when checkout persists an order.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID          `json:"order_id"`
	UserID      uuid.UUID          `json:"user_id"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	Discount    decimal.Decimal    `json:"discount"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	CouponCode  *string            `json:"coupon_code,omitempty"`
	ItemCount   int                `json:"item_count"`
	Items       []OrderPlacedItem  `json:"items"`
	Delivery    OrderPlacedAddress `json:"delivery"`
	PlacedAt    time.Time          `json:"placed_at"`
}

type OrderPlacedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type OrderPlacedAddress struct {
	City string `json:"city"`
}

// OrderDeletedEvent is emitted when an admin removes an order.
type OrderDeletedEvent struct {
	OrderID   uuid.UUID `json:"order_id"`
	UserID    uuid.UUID `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// CartClearedEvent is emitted when a cart is deleted explicitly.
type CartClearedEvent struct {
	CartID    uuid.UUID `json:"cart_id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemCount int       `json:"item_count"`
	ClearedAt time.Time `json:"cleared_at"`
}
