package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	"github.com/angelmondragon/jewelmart-backend/pkg/pagination"
)

func seedOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, placedAt time.Time, key *string) *models.Order {
	t.Helper()
	order := NewSnapshot(SnapshotInput{
		UserID: userID,
		Lines: []Line{{
			ProductID:    uuid.New(),
			ProductName:  "Ring",
			Quantity:     2,
			Grams:        decimal.NewFromInt(3),
			CatalogPrice: decimal.NewFromInt(60),
			UnitPrice:    decimal.NewFromInt(50),
		}},
		Discount:       decimal.NewFromInt(10),
		IdempotencyKey: key,
		Delivery:       Delivery{Name: "Ana", Contact: "555", Address: "1 Main", City: "Lima"},
		PlacedAt:       placedAt,
	})
	require.NoError(t, NewRepository(conn).Create(context.Background(), order))
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	key := "key-1"
	userID := uuid.New()

	order := seedOrder(t, conn, userID, time.Now().UTC(), &key)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(90)))
	assert.True(t, found.Items[0].LineTotal.Equal(decimal.NewFromInt(100)))

	byKey, err := repo.FindByIdempotencyKey(ctx, userID, key)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byKey.ID)

	_, err = repo.FindByIdempotencyKey(ctx, uuid.New(), key)
	assert.True(t, db.IsNotFound(err))
}

func TestRepositoryIdempotencyKeyUniquePerUser(t *testing.T) {
	conn := dbtest.Open(t)
	key := "dup"
	userID := uuid.New()
	seedOrder(t, conn, userID, time.Now().UTC(), &key)

	dup := NewSnapshot(SnapshotInput{
		UserID:         userID,
		Lines:          []Line{{ProductID: uuid.New(), Quantity: 1, Grams: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)}},
		IdempotencyKey: &key,
		Delivery:       Delivery{Name: "a", Contact: "b", Address: "c", City: "d"},
	})
	err := NewRepository(conn).Create(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryListPagination(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID, other := uuid.New(), uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newest := seedOrder(t, conn, userID, base.Add(2*time.Hour), nil)
	middle := seedOrder(t, conn, userID, base.Add(time.Hour), nil)
	oldest := seedOrder(t, conn, userID, base, nil)
	seedOrder(t, conn, other, base.Add(3*time.Hour), nil)

	filters := ListFilters{UserID: &userID}
	first, next, err := repo.List(ctx, pagination.Params{Limit: 2}, filters)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, newest.ID, first[0].ID)
	assert.Equal(t, middle.ID, first[1].ID)
	require.NotEmpty(t, next)

	second, next, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: next}, filters)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, oldest.ID, second[0].ID)
	assert.Empty(t, next)

	all, _, err := repo.List(ctx, pagination.Params{Limit: 10}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRepositoryDelete(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	order := seedOrder(t, conn, uuid.New(), time.Now().UTC(), nil)

	deleted, err := repo.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	var items int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)

	deleted, err = repo.Delete(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestApplyDiscountClampsAtZero(t *testing.T) {
	assert.True(t, ApplyDiscount(decimal.NewFromInt(20), decimal.NewFromInt(50)).IsZero())
	assert.True(t, ApplyDiscount(decimal.NewFromInt(250), decimal.NewFromInt(30)).Equal(decimal.NewFromInt(220)))
}
