package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
)

// ProductDTO is the catalog representation returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	MetalType   string          `json:"metal_type"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Weight      decimal.Decimal `json:"weight"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductInput is the body of create and full update. Update overwrites every
// field, matching a PUT of the whole resource.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"max=100"`
	MetalType   string          `json:"metal_type" validate:"max=100"`
	Image       string          `json:"image" validate:"max=2048"`
	Description string          `json:"description" validate:"max=5000"`
	Weight      decimal.Decimal `json:"weight"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		MetalType:   p.MetalType,
		Image:       p.Image,
		Description: p.Description,
		Weight:      p.WeightGrams,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
