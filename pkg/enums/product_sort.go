package enums

import (
	"fmt"
	"strings"
)

// ProductSort enumerates the catalog orderings accepted by the list endpoint.
type ProductSort string

const (
	ProductSortNewest         ProductSort = "newest"
	ProductSortPriceLowToHigh ProductSort = "priceLowToHigh"
	ProductSortPriceHighToLow ProductSort = "priceHighToLow"
	ProductSortNameAsc        ProductSort = "nameAsc"
	ProductSortNameDesc       ProductSort = "nameDesc"
)

var validProductSorts = []ProductSort{
	ProductSortNewest,
	ProductSortPriceLowToHigh,
	ProductSortPriceHighToLow,
	ProductSortNameAsc,
	ProductSortNameDesc,
}

// String implements fmt.Stringer.
func (s ProductSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort matches sort tokens case-insensitively. An empty value
// resolves to ProductSortNewest.
func ParseProductSort(value string) (ProductSort, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ProductSortNewest, nil
	}
	for _, candidate := range validProductSorts {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
