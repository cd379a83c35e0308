package products

import (
	"strings"

	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
)

// ListFilters are the catalog browse knobs. Empty strings disable a filter.
type ListFilters struct {
	Search    string
	Category  string
	MetalType string
	Sort      enums.ProductSort
}

// NewListFilters normalizes raw query values. Unknown sort tokens fall back
// to newest first.
func NewListFilters(search, category, metalType, sort string) ListFilters {
	parsed, err := enums.ParseProductSort(sort)
	if err != nil {
		parsed = enums.ProductSortNewest
	}
	return ListFilters{
		Search:    strings.TrimSpace(search),
		Category:  strings.TrimSpace(category),
		MetalType: strings.TrimSpace(metalType),
		Sort:      parsed,
	}
}

func orderClauses(sort enums.ProductSort) []string {
	switch sort {
	case enums.ProductSortPriceLowToHigh:
		return []string{"price ASC", "created_at DESC", "id ASC"}
	case enums.ProductSortPriceHighToLow:
		return []string{"price DESC", "created_at DESC", "id ASC"}
	case enums.ProductSortNameAsc:
		return []string{"LOWER(name) ASC", "id ASC"}
	case enums.ProductSortNameDesc:
		return []string{"LOWER(name) DESC", "id ASC"}
	default:
		return []string{"created_at DESC", "id DESC"}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
}
