package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	"github.com/angelmondragon/jewelmart-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListFilters narrows an order listing. A nil UserID lists every user.
type ListFilters struct {
	UserID *uuid.UUID
}
