package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/jewelmart-backend/pkg/auth"
	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/jewelmart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes order history and admin order management.
type Service interface {
	List(ctx context.Context, actor auth.Actor, params pagination.Params, userID *uuid.UUID) (*pagination.Page[OrderDTO], error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*OrderDTO, error)
	Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*OrderDTO, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	outbox   outbox.Emitter
	now      func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, tx txRunner, products productLoader, emitter outbox.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		outbox:   emitter,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// List scopes customers to their own orders. Admins may filter by user.
func (s *service) List(ctx context.Context, actor auth.Actor, params pagination.Params, userID *uuid.UUID) (*pagination.Page[OrderDTO], error) {
	filters := ListFilters{UserID: userID}
	if !actor.IsAdmin() {
		if userID != nil && *userID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot list orders of another user")
		}
		own := actor.UserID
		filters.UserID = &own
	}

	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list orders")
	}
	return &pagination.Page[OrderDTO]{Items: FromModels(rows), NextCursor: next}, nil
}

// Get hides orders of other users behind NotFound.
func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*OrderDTO, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	req = req.atColumnScale()
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	if req.IdempotencyKey != "" {
		if existing, err := s.findByKey(ctx, req.UserID, req.IdempotencyKey); existing != nil || err != nil {
			return existing, err
		}
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Internal(err, "load products")
	}

	lines := make([]Line, 0, len(req.Items))
	for _, item := range req.Items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
				WithDetails(map[string]string{"product_id": item.ProductID.String()})
		}
		lines = append(lines, Line{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     item.Quantity,
			Grams:        item.Grams,
			CatalogPrice: product.Price,
			UnitPrice:    item.FinalPrice,
		})
	}

	var key *string
	if req.IdempotencyKey != "" {
		key = &req.IdempotencyKey
	}
	order := NewSnapshot(SnapshotInput{
		UserID:         req.UserID,
		Lines:          lines,
		Discount:       req.Discount,
		CouponCode:     req.CouponCode,
		IdempotencyKey: key,
		Delivery:       req.Delivery,
		PlacedAt:       s.now(),
	})

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if key != nil && db.IsUniqueViolation(err, "") {
				return errDuplicateKey
			}
			return pkgerrors.Internal(err, "create order")
		}
		if err := s.outbox.Emit(ctx, tx, PlacedEvent(order, actorRef(actor))); err != nil {
			return pkgerrors.Internal(err, "emit order placed")
		}
		return nil
	})
	if errors.Is(err, errDuplicateKey) {
		existing, findErr := s.findByKey(ctx, req.UserID, req.IdempotencyKey)
		if findErr != nil {
			return nil, findErr
		}
		if existing != nil {
			return existing, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already placed for idempotency key")
	}
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

var errDuplicateKey = errors.New("idempotency key already used")

// findByKey returns the order already placed for the user under key, or nil.
func (s *service) findByKey(ctx context.Context, userID uuid.UUID, key string) (*OrderDTO, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, userID, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Internal(err, "lookup idempotent order")
	}
	return FromModel(existing), nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Internal(err, "delete order")
		}
		now := s.now()
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			OccurredAt:    now,
			Data: payloads.OrderDeletedEvent{
				OrderID:   order.ID,
				UserID:    order.UserID,
				DeletedAt: now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Internal(err, "emit order deleted")
		}
		return nil
	})
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Internal(err, "load order")
	}
	return order, nil
}

func validateCreate(req CreateRequest) error {
	details := req.Delivery.MissingFields()
	if req.UserID == uuid.Nil {
		details["user_id"] = "is required"
	}
	if len(req.Items) == 0 {
		details["items"] = "at least one item is required"
	}
	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if item.Quantity < 1 {
			details[prefix+"quantity"] = "must be at least 1"
		}
		if !item.Grams.IsPositive() {
			details[prefix+"grams"] = "must be greater than 0"
		}
		if !item.FinalPrice.IsPositive() {
			details[prefix+"final_price"] = "must be greater than 0"
		}
	}
	if req.Discount.IsNegative() {
		details["discount"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func actorRef(actor auth.Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}
