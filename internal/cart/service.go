package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelmart-backend/pkg/errors"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox"
	"github.com/angelmondragon/jewelmart-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart reads and mutations. Every mutation holds the cart row
// lock for the duration of its transaction.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartView, bool, error)
	Add(ctx context.Context, input AddItemInput) (*CartView, error)
	Update(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*CartView, error)
	Clear(ctx context.Context, userID uuid.UUID, actor *outbox.ActorRef) error
	List(ctx context.Context) ([]CartView, error)
}

type service struct {
	repo    *Repository
	tx      txRunner
	emitter outbox.Emitter
	now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, emitter outbox.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		emitter: emitter,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartView, bool, error) {
	if userID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Internal(err, "load cart")
	}
	return FromModel(cart), true, nil
}

func (s *service) Add(ctx context.Context, input AddItemInput) (*CartView, error) {
	input.Grams = input.Grams.Round(models.WeightScale)
	input.FinalPrice = input.FinalPrice.Round(models.MoneyScale)
	if err := validateAdd(input); err != nil {
		return nil, err
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.EnsureForUpdate(ctx, input.UserID)
		if err != nil {
			if db.IsForeignKeyViolation(err, "fk_carts_user") {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").
					WithDetails(map[string]string{"user_id": "user does not exist"})
			}
			return pkgerrors.Internal(err, "lock cart")
		}

		if idx := indexOf(cart.Items, input.ProductID); idx >= 0 {
			item := &cart.Items[idx]
			item.Quantity += input.Quantity
			item.WeightGrams = input.Grams
			item.UnitPrice = input.FinalPrice
			if err := repo.SaveItem(ctx, item); err != nil {
				return itemWriteError(err, "update cart item")
			}
		} else {
			item := models.CartItem{
				CartID:      cart.ID,
				ProductID:   input.ProductID,
				Position:    nextPosition(cart.Items),
				Quantity:    input.Quantity,
				WeightGrams: input.Grams,
				UnitPrice:   input.FinalPrice,
			}
			if err := repo.CreateItem(ctx, &item); err != nil {
				return itemWriteError(err, "add cart item")
			}
			cart.Items = append(cart.Items, item)
		}

		if err := s.touch(ctx, repo, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func (s *service) Update(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.lockExisting(ctx, repo, userID)
		if err != nil {
			return err
		}
		idx := indexOf(cart.Items, productID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product not found in cart")
		}
		if quantity < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
		}

		if quantity == 0 {
			if err := repo.DeleteItem(ctx, cart.Items[idx].ID); err != nil {
				return pkgerrors.Internal(err, "remove cart item")
			}
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else {
			cart.Items[idx].Quantity = quantity
			if err := repo.SaveItem(ctx, &cart.Items[idx]); err != nil {
				return pkgerrors.Internal(err, "update cart item")
			}
		}

		if err := s.touch(ctx, repo, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and product id are required")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.lockExisting(ctx, repo, userID)
		if err != nil {
			return err
		}
		idx := indexOf(cart.Items, productID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product not found in cart")
		}
		if err := repo.DeleteItem(ctx, cart.Items[idx].ID); err != nil {
			return pkgerrors.Internal(err, "remove cart item")
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		if err := s.touch(ctx, repo, cart); err != nil {
			return err
		}
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID, actor *outbox.ActorRef) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.lockExisting(ctx, repo, userID)
		if err != nil {
			return err
		}
		if err := repo.DeleteCart(ctx, cart.ID); err != nil {
			return pkgerrors.Internal(err, "delete cart")
		}
		now := s.now()
		event := outbox.DomainEvent{
			EventType:     enums.EventCartCleared,
			AggregateType: enums.AggregateCart,
			AggregateID:   cart.ID,
			Actor:         actor,
			OccurredAt:    now,
			Data: payloads.CartClearedEvent{
				CartID:    cart.ID,
				UserID:    userID,
				ItemCount: len(cart.Items),
				ClearedAt: now,
			},
		}
		if err := s.emitter.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Internal(err, "emit cart cleared")
		}
		return nil
	})
}

func (s *service) List(ctx context.Context) ([]CartView, error) {
	carts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Internal(err, "list carts")
	}
	out := make([]CartView, 0, len(carts))
	for i := range carts {
		out = append(out, *FromModel(&carts[i]))
	}
	return out, nil
}

func (s *service) lockExisting(ctx context.Context, repo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByUserForUpdate(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Internal(err, "lock cart")
	}
	return cart, nil
}

func (s *service) touch(ctx context.Context, repo *Repository, cart *models.Cart) error {
	now := s.now()
	if err := repo.Touch(ctx, cart.ID, now); err != nil {
		return pkgerrors.Internal(err, "touch cart")
	}
	cart.UpdatedAt = now
	return nil
}

func validateAdd(input AddItemInput) error {
	details := map[string]string{}
	if input.UserID == uuid.Nil {
		details["user_id"] = "is required"
	}
	if input.ProductID == uuid.Nil {
		details["product_id"] = "is required"
	}
	if input.Quantity < 1 {
		details["quantity"] = "must be at least 1"
	}
	if !input.Grams.IsPositive() {
		details["grams"] = "must be greater than 0"
	}
	if !input.FinalPrice.IsPositive() {
		details["final_price"] = "must be greater than 0"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").WithDetails(details)
	}
	return nil
}

func itemWriteError(err error, msg string) error {
	if db.IsCheckViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item")
	}
	return pkgerrors.Internal(err, msg)
}

func indexOf(items []models.CartItem, productID uuid.UUID) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func nextPosition(items []models.CartItem) int {
	next := 0
	for _, item := range items {
		if item.Position >= next {
			next = item.Position + 1
		}
	}
	return next
}
