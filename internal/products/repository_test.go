package products

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/jewelmart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/jewelmart-backend/pkg/db/models"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
)

func seedCatalog(t *testing.T, repo *Repository) []models.Product {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.Product{
		{Name: "Gold Ring", Price: decimal.NewFromInt(120), Category: "Rings", MetalType: "Gold", WeightGrams: decimal.NewFromInt(4), CreatedAt: base},
		{Name: "silver chain", Price: decimal.NewFromInt(80), Category: "Necklaces", MetalType: "Silver", WeightGrams: decimal.NewFromInt(12), CreatedAt: base.Add(time.Hour)},
		{Name: "Rose_Gold Band", Price: decimal.NewFromInt(200), Category: "rings", MetalType: "Rose Gold", WeightGrams: decimal.NewFromInt(5), CreatedAt: base.Add(2 * time.Hour)},
		{Name: "Anklet 100%", Price: decimal.NewFromInt(45), Category: "Anklets", MetalType: "silver", WeightGrams: decimal.NewFromInt(3), CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range rows {
		require.NoError(t, repo.Create(context.Background(), &rows[i]))
	}
	return rows
}

func names(rows []models.Product) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Name)
	}
	return out
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedCatalog(t, repo)
	ctx := context.Background()

	rows, err := repo.List(ctx, NewListFilters("GOLD", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rose_Gold Band", "Gold Ring"}, names(rows))

	rows, err = repo.List(ctx, NewListFilters("", "RINGS", "", ""))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, NewListFilters("", "", "SILVER", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Anklet 100%", "silver chain"}, names(rows))

	rows, err = repo.List(ctx, NewListFilters("chain", "necklaces", "silver", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"silver chain"}, names(rows))
}

func TestRepositoryListEscapesWildcards(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedCatalog(t, repo)
	ctx := context.Background()

	rows, err := repo.List(ctx, NewListFilters("_", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rose_Gold Band"}, names(rows))

	rows, err = repo.List(ctx, NewListFilters("%", "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Anklet 100%"}, names(rows))
}

func TestRepositoryListSorts(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seedCatalog(t, repo)
	ctx := context.Background()

	cases := []struct {
		sort string
		want []string
	}{
		{"", []string{"Anklet 100%", "Rose_Gold Band", "silver chain", "Gold Ring"}},
		{"priceLowToHigh", []string{"Anklet 100%", "silver chain", "Gold Ring", "Rose_Gold Band"}},
		{"PRICEHIGHTOLOW", []string{"Rose_Gold Band", "Gold Ring", "silver chain", "Anklet 100%"}},
		{"nameAsc", []string{"Anklet 100%", "Gold Ring", "Rose_Gold Band", "silver chain"}},
		{"nameDesc", []string{"silver chain", "Rose_Gold Band", "Gold Ring", "Anklet 100%"}},
		{"bogus", []string{"Anklet 100%", "Rose_Gold Band", "silver chain", "Gold Ring"}},
	}
	for _, tc := range cases {
		t.Run(tc.sort, func(t *testing.T) {
			rows, err := repo.List(ctx, NewListFilters("", "", "", tc.sort))
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(rows))
		})
	}
}

func TestNewListFiltersFallsBackToNewest(t *testing.T) {
	filters := NewListFilters("  ring ", " Rings", "", "nope")
	assert.Equal(t, "ring", filters.Search)
	assert.Equal(t, "Rings", filters.Category)
	assert.Equal(t, enums.ProductSortNewest, filters.Sort)
}

func TestRepositoryFindByIDs(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	seeded := seedCatalog(t, repo)
	ctx := context.Background()

	found, err := repo.FindByIDs(ctx, []uuid.UUID{seeded[0].ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "Gold Ring", found[seeded[0].ID].Name)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
