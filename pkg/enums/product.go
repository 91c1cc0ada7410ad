package enums

import (
	"fmt"
	"slices"
	"strings"
)

// ProductCategory is the stored category label of a catalog product.
type ProductCategory string

const (
	ProductCategoryPodKits     ProductCategory = "PODKITS"
	ProductCategoryDisposable  ProductCategory = "DISPOSABLE"
	ProductCategoryNicSalts    ProductCategory = "NIC & SALTS"
	ProductCategoryAccessories ProductCategory = "Accessories"
	ProductCategoryMostSelling ProductCategory = "MOST SELLING"
)

var validProductCategories = []ProductCategory{
	ProductCategoryPodKits,
	ProductCategoryDisposable,
	ProductCategoryNicSalts,
	ProductCategoryAccessories,
	ProductCategoryMostSelling,
}

// category slugs used by storefront URLs (?category=nic-salts).
var categorySlugs = map[string]ProductCategory{
	"podkits":      ProductCategoryPodKits,
	"disposable":   ProductCategoryDisposable,
	"nic-salts":    ProductCategoryNicSalts,
	"accessories":  ProductCategoryAccessories,
	"most-selling": ProductCategoryMostSelling,
}

// CategorySlugAll disables category filtering.
const CategorySlugAll = "all"

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// Slug returns the URL slug for the category.
func (c ProductCategory) Slug() string {
	for slug, candidate := range categorySlugs {
		if candidate == c {
			return slug
		}
	}
	return ""
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	return slices.Contains(validProductCategories, c)
}

// ProductCategories returns the categories in display order.
func ProductCategories() []ProductCategory {
	return slices.Clone(validProductCategories)
}

// ParseProductCategory accepts either the stored label or its slug.
func ParseProductCategory(value string) (ProductCategory, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validProductCategories {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	if candidate, ok := categorySlugs[strings.ToLower(trimmed)]; ok {
		return candidate, nil
	}
	for _, candidate := range validProductCategories {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
