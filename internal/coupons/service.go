package coupons

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
)

// Service manages flat-discount coupons.
type Service interface {
	List(ctx context.Context) ([]CouponDTO, error)
	Get(ctx context.Context, code string) (*CouponDTO, error)
	Create(ctx context.Context, req CreateRequest) (*CouponDTO, error)
	Update(ctx context.Context, code string, req UpdateRequest) (*CouponDTO, error)
	Delete(ctx context.Context, code string) error
	Apply(ctx context.Context, code string) (*Applied, error)
}

type couponRepository interface {
	List(ctx context.Context) ([]models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Save(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, code string) (bool, error)
}

type service struct {
	repo couponRepository
}

func NewService(repo couponRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list coupons")
	}
	out := make([]CouponDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, code string) (*CouponDTO, error) {
	coupon, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return FromModel(coupon), nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*CouponDTO, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	req.DiscountAmount = req.DiscountAmount.Round(models.MoneyScale)
	if err := validateAmount(req.DiscountAmount); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Internal(err, "lookup coupon")
	}

	coupon := &models.Coupon{Code: code, DiscountAmount: req.DiscountAmount}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Internal(err, "create coupon")
	}
	return FromModel(coupon), nil
}

func (s *service) Update(ctx context.Context, code string, req UpdateRequest) (*CouponDTO, error) {
	req.DiscountAmount = req.DiscountAmount.Round(models.MoneyScale)
	if err := validateAmount(req.DiscountAmount); err != nil {
		return nil, err
	}
	coupon, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	coupon.DiscountAmount = req.DiscountAmount
	if err := s.repo.Save(ctx, coupon); err != nil {
		return nil, pkgerrors.Internal(err, "update coupon")
	}
	return FromModel(coupon), nil
}

func (s *service) Delete(ctx context.Context, code string) error {
	deleted, err := s.repo.Delete(ctx, NormalizeCode(code))
	if err != nil {
		return pkgerrors.Internal(err, "delete coupon")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

// Apply resolves a code to its discount. Unknown codes are a client error,
// not a missing resource.
func (s *service) Apply(ctx context.Context, code string) (*Applied, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
	}
	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon code")
		}
		return nil, pkgerrors.Internal(err, "lookup coupon")
	}
	return &Applied{Code: coupon.Code, DiscountAmount: coupon.DiscountAmount}, nil
}

func (s *service) load(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Internal(err, "load coupon")
	}
	return coupon, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"discount_amount": "must be greater than 0"})
	}
	return nil
}
