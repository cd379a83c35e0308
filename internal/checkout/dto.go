package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/internal/orders"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
)

const invoiceMessage = "Payment successful, order placed!"

// Summary is the priced, read-only view of a cart.
type Summary struct {
	UserID      uuid.UUID        `json:"user_id"`
	Items       []orders.ItemDTO `json:"items"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

// Invoice is returned by a successful confirm-payment and by its replays.
type Invoice struct {
	Message string `json:"message"`
	orders.OrderDTO
}

// ConfirmRequest is the HTTP body of confirm-payment.
type ConfirmRequest struct {
	UserID     uuid.UUID        `json:"user_id" validate:"required"`
	Delivery   orders.Delivery  `json:"delivery"`
	Discount   *decimal.Decimal `json:"discount,omitempty"`
	CouponCode *string          `json:"coupon_code,omitempty"`
}

// ConfirmInput is the resolved confirm-payment command.
type ConfirmInput struct {
	UserID         uuid.UUID
	Delivery       orders.Delivery
	Discount       *decimal.Decimal
	CouponCode     *string
	IdempotencyKey string
	Actor          *outbox.ActorRef
}
