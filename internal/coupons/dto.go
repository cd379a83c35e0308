package coupons

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
)

type CouponDTO struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CreateRequest struct {
	Code           string          `json:"code" validate:"required,max=64"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// UpdateRequest only changes the discount. The code is the identity.
type UpdateRequest struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// Applied is what a shopper sees after redeeming a code.
type Applied struct {
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// NormalizeCode trims and upper-cases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func FromModel(c *models.Coupon) *CouponDTO {
	if c == nil {
		return nil
	}
	return &CouponDTO{
		Code:           c.Code,
		DiscountAmount: c.DiscountAmount,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
