package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
)

type OrderDTO struct {
	OrderID     uuid.UUID       `json:"order_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Items       []ItemDTO       `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CouponCode  *string         `json:"coupon_code,omitempty"`
	Delivery    Delivery        `json:"delivery"`
	OrderDate   time.Time       `json:"order_date"`
}

type ItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Grams       decimal.Decimal `json:"grams"`
	Price       decimal.Decimal `json:"price"`
	FinalPrice  decimal.Decimal `json:"final_price"`
	ItemTotal   decimal.Decimal `json:"item_total"`
}

// Delivery holds where an order ships. Every field is required.
type Delivery struct {
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"required,max=100"`
	Address string `json:"address" validate:"required,max=500"`
	City    string `json:"city" validate:"required,max=100"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (d Delivery) Trimmed() Delivery {
	return Delivery{
		Name:    strings.TrimSpace(d.Name),
		Contact: strings.TrimSpace(d.Contact),
		Address: strings.TrimSpace(d.Address),
		City:    strings.TrimSpace(d.City),
	}
}

// MissingFields lists blank delivery fields by their JSON name.
func (d Delivery) MissingFields() map[string]string {
	out := map[string]string{}
	t := d.Trimmed()
	if t.Name == "" {
		out["delivery.name"] = "is required"
	}
	if t.Contact == "" {
		out["delivery.contact"] = "is required"
	}
	if t.Address == "" {
		out["delivery.address"] = "is required"
	}
	if t.City == "" {
		out["delivery.city"] = "is required"
	}
	return out
}

// CreateRequest is the admin body for a manual order.
type CreateRequest struct {
	UserID     uuid.UUID         `json:"user_id" validate:"required"`
	Items      []CreateItemInput `json:"items" validate:"required,min=1,dive"`
	Discount   decimal.Decimal   `json:"discount"`
	CouponCode *string           `json:"coupon_code,omitempty"`
	Delivery   Delivery          `json:"delivery"`

	// IdempotencyKey comes from the request header, never the body.
	IdempotencyKey string `json:"-"`
}

// atColumnScale rounds money and weights to their stored precision without
// touching the caller's item slice.
func (r CreateRequest) atColumnScale() CreateRequest {
	items := make([]CreateItemInput, len(r.Items))
	for i, item := range r.Items {
		item.Grams = item.Grams.Round(models.WeightScale)
		item.FinalPrice = item.FinalPrice.Round(models.MoneyScale)
		items[i] = item
	}
	r.Items = items
	r.Discount = r.Discount.Round(models.MoneyScale)
	r.IdempotencyKey = strings.TrimSpace(r.IdempotencyKey)
	return r
}

type CreateItemInput struct {
	ProductID  uuid.UUID       `json:"product_id" validate:"required"`
	Quantity   int             `json:"quantity" validate:"min=1"`
	Grams      decimal.Decimal `json:"grams"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Items:       make([]ItemDTO, 0, len(o.Items)),
		Subtotal:    o.Subtotal,
		Discount:    o.Discount,
		TotalAmount: o.TotalAmount,
		CouponCode:  o.CouponCode,
		Delivery: Delivery{
			Name:    o.DeliveryName,
			Contact: o.DeliveryContact,
			Address: o.DeliveryAddress,
			City:    o.DeliveryCity,
		},
		OrderDate: o.CreatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Grams:       item.WeightGrams,
			Price:       item.CatalogPrice,
			FinalPrice:  item.UnitPrice,
			ItemTotal:   item.LineTotal,
		})
	}
	return dto
}

func FromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
