package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/jewelmart-backend/internal/cart"
	"github.com/angelmondragon/jewelmart-backend/internal/coupons"
	"github.com/angelmondragon/jewelmart-backend/internal/orders"
	"github.com/angelmondragon/jewelmart-backend/internal/products"
	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
	"github.com/angelmondragon/jewelmart-backend/pkg/logger"
	"github.com/angelmondragon/jewelmart-backend/pkg/metrics"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponResolver interface {
	Apply(ctx context.Context, code string) (*coupons.Applied, error)
}

// Service prices carts and turns them into orders.
type Service interface {
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
	ConfirmPayment(ctx context.Context, input ConfirmInput) (*Invoice, error)
}

// Params groups the checkout dependencies.
type Params struct {
	Tx       txRunner
	Carts    *cart.Repository
	Products *products.Repository
	Orders   orders.Repository
	Coupons  couponResolver
	Outbox   outbox.Emitter
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
}

type service struct {
	tx       txRunner
	carts    *cart.Repository
	products *products.Repository
	orders   orders.Repository
	coupons  couponResolver
	outbox   outbox.Emitter
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
	now      func() time.Time
}

var errKeyRace = errors.New("idempotency key claimed concurrently")

// NewService builds the checkout service.
func NewService(p Params) (Service, error) {
	if p.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if p.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Coupons == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		tx:       p.Tx,
		carts:    p.Carts,
		products: p.Products,
		orders:   p.Orders,
		coupons:  p.Coupons,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
		logg:     p.Logger,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	c, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found or is empty")
		}
		return nil, pkgerrors.Internal(err, "load cart")
	}
	if len(c.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found or is empty")
	}

	lines, err := s.priceLines(ctx, s.products, c.Items)
	if err != nil {
		return nil, err
	}
	summary := &Summary{UserID: userID, Items: make([]orders.ItemDTO, 0, len(lines))}
	for _, line := range lines {
		summary.Items = append(summary.Items, itemDTO(line))
	}
	summary.TotalAmount = orders.Subtotal(lines).Round(2)
	return summary, nil
}

func (s *service) ConfirmPayment(ctx context.Context, input ConfirmInput) (*Invoice, error) {
	if err := validateConfirm(input); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(input.IdempotencyKey)

	if key != "" {
		if invoice, err := s.replay(ctx, input.UserID, key); invoice != nil || err != nil {
			return invoice, err
		}
	}

	discount := decimal.Zero
	var couponCode *string
	if input.Discount != nil {
		discount = *input.Discount
	}
	if input.CouponCode != nil {
		applied, err := s.coupons.Apply(ctx, *input.CouponCode)
		if err != nil {
			return nil, err
		}
		discount = applied.DiscountAmount
		code := applied.Code
		couponCode = &code
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		c, err := carts.FindByUserForUpdate(ctx, input.UserID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart not found or is empty")
			}
			return pkgerrors.Internal(err, "lock cart")
		}
		if len(c.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart not found or is empty")
		}

		lines, err := s.priceLines(ctx, s.products.WithTx(tx), c.Items)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart has no purchasable items")
		}

		var keyPtr *string
		if key != "" {
			keyPtr = &key
		}
		order = orders.NewSnapshot(orders.SnapshotInput{
			UserID:         input.UserID,
			Lines:          lines,
			Discount:       discount,
			CouponCode:     couponCode,
			IdempotencyKey: keyPtr,
			Delivery:       input.Delivery,
			PlacedAt:       s.now(),
		})
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			if keyPtr != nil && db.IsUniqueViolation(err, "") {
				return errKeyRace
			}
			return pkgerrors.Internal(err, "create order")
		}
		if _, err := carts.DeleteItems(ctx, c.ID); err != nil {
			return pkgerrors.Internal(err, "empty cart")
		}
		if err := carts.Touch(ctx, c.ID, order.CreatedAt); err != nil {
			return pkgerrors.Internal(err, "touch cart")
		}
		if err := s.outbox.Emit(ctx, tx, orders.PlacedEvent(order, input.Actor)); err != nil {
			return pkgerrors.Internal(err, "emit order placed")
		}
		return nil
	})
	if errors.Is(err, errKeyRace) {
		invoice, replayErr := s.replay(ctx, input.UserID, key)
		if replayErr != nil {
			return nil, replayErr
		}
		if invoice != nil {
			return invoice, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already placed for idempotency key")
	}
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced(order.TotalAmount)
	if s.logg != nil {
		fields := map[string]any{
			"order_id": order.ID.String(),
			"user_id":  order.UserID.String(),
			"total":    order.TotalAmount.String(),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "order placed")
	}
	return newInvoice(order), nil
}

// replay returns the invoice of an order already placed under key, or nil.
func (s *service) replay(ctx context.Context, userID uuid.UUID, key string) (*Invoice, error) {
	existing, err := s.orders.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Internal(err, "lookup idempotent order")
	}
	s.metrics.OrderReplayed()
	return newInvoice(existing), nil
}

// priceLines joins cart lines with the catalog. Lines whose product is gone
// are skipped.
func (s *service) priceLines(ctx context.Context, catalog *products.Repository, items []models.CartItem) ([]orders.Line, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	found, err := catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Internal(err, "load products")
	}
	lines := make([]orders.Line, 0, len(items))
	for _, item := range items {
		product, ok := found[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, orders.Line{
			ProductID:    item.ProductID,
			ProductName:  product.Name,
			Quantity:     item.Quantity,
			Grams:        item.WeightGrams,
			CatalogPrice: product.Price,
			UnitPrice:    item.UnitPrice,
		})
	}
	return lines, nil
}

func validateConfirm(input ConfirmInput) error {
	details := input.Delivery.MissingFields()
	if input.UserID == uuid.Nil {
		details["user_id"] = "is required"
	}
	if input.Discount != nil && input.Discount.IsNegative() {
		details["discount"] = "must not be negative"
	}
	if input.Discount != nil && input.CouponCode != nil {
		details["coupon_code"] = "cannot be combined with discount"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func itemDTO(line orders.Line) orders.ItemDTO {
	return orders.ItemDTO{
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Quantity:    line.Quantity,
		Grams:       line.Grams,
		Price:       line.CatalogPrice,
		FinalPrice:  line.UnitPrice,
		ItemTotal:   line.LineTotal().Round(2),
	}
}

func newInvoice(order *models.Order) *Invoice {
	return &Invoice{Message: invoiceMessage, OrderDTO: *orders.FromModel(order)}
}
