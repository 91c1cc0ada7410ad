package catalog

import (
	"fmt"
	"strings"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/types"
)

// ProductInput carries every admin-editable product field. Money is minor units.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       int             `json:"price"`
	SalePrice   *int            `json:"salePrice"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	ImageURL    string          `json:"imageUrl"`
	Images      []string        `json:"images"`
	Flavors     []types.Flavor  `json:"flavors"`
	Variants    []types.Variant `json:"variants"`
	Featured    bool            `json:"featured"`
	MostSelling bool            `json:"mostSelling"`
}

// Validate returns one FieldError per problem. An empty result means the input is writable.
func (in ProductInput) Validate() []pkgerrors.FieldError {
	var errs []pkgerrors.FieldError
	add := func(field, message string) {
		errs = append(errs, pkgerrors.FieldError{Field: field, Message: message})
	}

	if strings.TrimSpace(in.Name) == "" {
		add("name", "is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		add("description", "is required")
	}
	if strings.TrimSpace(in.Brand) == "" {
		add("brand", "is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		add("category", "is required")
	} else if _, err := enums.ParseProductCategory(in.Category); err != nil {
		add("category", "is not a known category")
	}
	if in.Price < 0 {
		add("price", "must be non-negative")
	}
	if in.Stock < 0 {
		add("stock", "must be non-negative")
	}
	if in.SalePrice != nil {
		switch {
		case *in.SalePrice < 0:
			add("salePrice", "must be non-negative")
		case *in.SalePrice >= in.Price:
			add("salePrice", "must be less than price")
		}
	}

	seenFlavors := map[string]struct{}{}
	for i, flavor := range in.Flavors {
		field := fmt.Sprintf("flavors[%d].name", i)
		name := strings.TrimSpace(flavor.Name)
		if name == "" {
			add(field, "is required")
			continue
		}
		if _, dup := seenFlavors[name]; dup {
			add(field, "is duplicated")
		}
		seenFlavors[name] = struct{}{}
	}

	seenVariants := map[string]struct{}{}
	for i, variant := range in.Variants {
		name := strings.TrimSpace(variant.Name)
		if name == "" {
			add(fmt.Sprintf("variants[%d].name", i), "is required")
		} else if _, dup := seenVariants[name]; dup {
			add(fmt.Sprintf("variants[%d].name", i), "is duplicated")
		}
		seenVariants[name] = struct{}{}
		if variant.Price != nil && *variant.Price < 0 {
			add(fmt.Sprintf("variants[%d].price", i), "must be non-negative")
		}
		if variant.Stock != nil && *variant.Stock < 0 {
			add(fmt.Sprintf("variants[%d].stock", i), "must be non-negative")
		}
	}
	return errs
}

// ApplyTo copies the input onto p. Callers validate first.
func (in ProductInput) ApplyTo(p *models.Product) {
	category, _ := enums.ParseProductCategory(in.Category)

	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price
	p.SalePrice = copyInt(in.SalePrice)
	p.Stock = in.Stock
	p.Category = category
	p.Brand = strings.TrimSpace(in.Brand)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.Featured = in.Featured
	p.MostSelling = in.MostSelling

	p.Images = types.StringList{}
	for _, url := range in.Images {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			p.Images = append(p.Images, trimmed)
		}
	}
	if p.ImageURL == "" && len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
	}

	p.Flavors = types.Flavors{}
	for _, flavor := range in.Flavors {
		p.Flavors = append(p.Flavors, types.Flavor{Name: strings.TrimSpace(flavor.Name), InStock: flavor.InStock})
	}
	p.Variants = types.Variants{}
	for _, variant := range in.Variants {
		p.Variants = append(p.Variants, types.Variant{
			Name:  strings.TrimSpace(variant.Name),
			Price: copyInt(variant.Price),
			Stock: copyInt(variant.Stock),
		})
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
