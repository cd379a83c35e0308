package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a flat discount addressed by its code.
type Coupon struct {
	Code           string          `gorm:"column:code;type:text;primaryKey;check:chk_coupons_code_upper,code = upper(code)"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(12,2);not null;check:chk_coupons_discount,discount_amount > 0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
