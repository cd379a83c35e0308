package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
)

// CartView renders a cart. Exists is false when the user never mutated a cart.
type CartView struct {
	UserID    uuid.UUID  `json:"user_id"`
	Exists    bool       `json:"exists"`
	Items     []ItemView `json:"items"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type ItemView struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Grams      decimal.Decimal `json:"grams"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

// AddItemRequest is the HTTP body of an add. Quantity and grams are optional.
type AddItemRequest struct {
	UserID     uuid.UUID        `json:"user_id" validate:"required"`
	ProductID  uuid.UUID        `json:"product_id" validate:"required"`
	Quantity   *int             `json:"quantity"`
	Grams      *decimal.Decimal `json:"grams"`
	FinalPrice *decimal.Decimal `json:"final_price"`
}

type UpdateItemRequest struct {
	UserID    uuid.UUID `json:"user_id" validate:"required"`
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *int      `json:"quantity" validate:"required"`
}

// AddItemInput is the fully resolved add command.
type AddItemInput struct {
	UserID     uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	Grams      decimal.Decimal
	FinalPrice decimal.Decimal
}

// ToInput applies the defaults of one unit and one gram.
func (r AddItemRequest) ToInput() AddItemInput {
	input := AddItemInput{
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  1,
		Grams:     decimal.NewFromInt(1),
	}
	if r.Quantity != nil {
		input.Quantity = *r.Quantity
	}
	if r.Grams != nil {
		input.Grams = *r.Grams
	}
	if r.FinalPrice != nil {
		input.FinalPrice = *r.FinalPrice
	}
	return input
}

// MissingView is what a user without a cart sees.
func MissingView(userID uuid.UUID) *CartView {
	return &CartView{UserID: userID, Exists: false, Items: []ItemView{}}
}

func FromModel(c *models.Cart) *CartView {
	if c == nil {
		return nil
	}
	createdAt, updatedAt := c.CreatedAt, c.UpdatedAt
	view := &CartView{
		UserID:    c.UserID,
		Exists:    true,
		Items:     make([]ItemView, 0, len(c.Items)),
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	}
	for _, item := range c.Items {
		view.Items = append(view.Items, ItemView{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Grams:      item.WeightGrams,
			FinalPrice: item.UnitPrice,
		})
	}
	return view
}
