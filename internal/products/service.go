package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
)

// Service exposes catalog browsing and admin product management.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepository interface {
	List(ctx context.Context, filters ListFilters) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct {
	repo productRepository
}

func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list products")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	input = input.atColumnScale()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product := &models.Product{}
	applyInput(product, input)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Internal(err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	input = input.atColumnScale()
	if err := validateInput(input); err != nil {
		return nil, err
	}
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(product, input)
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Internal(err, "update product")
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Internal(err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Internal(err, "load product")
	}
	return product, nil
}

func validateInput(input ProductInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "is required"
	}
	if !input.Price.IsPositive() {
		details["price"] = "must be greater than 0"
	}
	if input.Weight.IsNegative() {
		details["weight"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func applyInput(product *models.Product, input ProductInput) {
	product.Name = strings.TrimSpace(input.Name)
	product.Price = input.Price
	product.Category = strings.TrimSpace(input.Category)
	product.MetalType = strings.TrimSpace(input.MetalType)
	product.Image = strings.TrimSpace(input.Image)
	product.Description = input.Description
	product.WeightGrams = decimal.Max(input.Weight, decimal.Zero)
}

func (input ProductInput) atColumnScale() ProductInput {
	input.Price = input.Price.Round(models.MoneyScale)
	input.Weight = input.Weight.Round(models.WeightScale)
	return input
}
