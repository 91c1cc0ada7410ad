package catalog

import "github.com/vaporhaus/storefront-backend/pkg/db/models"

// OptionKind classifies which purchasable options a product offers.
type OptionKind string

const (
	OptionsNone               OptionKind = "none"
	OptionsFlavors            OptionKind = "flavors"
	OptionsVariants           OptionKind = "variants"
	OptionsFlavorsAndVariants OptionKind = "flavors_and_variants"
)

// OptionKindOf derives the kind from the product's flavor and variant lists.
func OptionKindOf(p models.Product) OptionKind {
	hasFlavors := len(p.Flavors) > 0
	hasVariants := len(p.Variants) > 0
	switch {
	case hasFlavors && hasVariants:
		return OptionsFlavorsAndVariants
	case hasFlavors:
		return OptionsFlavors
	case hasVariants:
		return OptionsVariants
	default:
		return OptionsNone
	}
}

// NeedsFlavor reports whether a flavor must be chosen before purchase.
func (k OptionKind) NeedsFlavor() bool {
	return k == OptionsFlavors || k == OptionsFlavorsAndVariants
}

// NeedsVariant reports whether a variant must be chosen before purchase.
func (k OptionKind) NeedsVariant() bool {
	return k == OptionsVariants || k == OptionsFlavorsAndVariants
}
