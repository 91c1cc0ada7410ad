package catalog

import (
	"testing"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/types"
)

func validInput() ProductInput {
	return ProductInput{
		Name:        "XROS 3",
		Description: "pod kit",
		Price:       2500,
		Stock:       3,
		Category:    "PODKITS",
		Brand:       "Vaporesso",
	}
}

func TestProductInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
		fields []string
	}{
		{name: "valid", mutate: func(*ProductInput) {}},
		{name: "slug category", mutate: func(in *ProductInput) { in.Category = "nic-salts" }},
		{name: "missing required", mutate: func(in *ProductInput) { in.Name = " "; in.Brand = "" }, fields: []string{"name", "brand"}},
		{name: "unknown category", mutate: func(in *ProductInput) { in.Category = "mods" }, fields: []string{"category"}},
		{name: "negative money", mutate: func(in *ProductInput) { in.Price = -1; in.Stock = -2 }, fields: []string{"price", "stock"}},
		{name: "sale equals price", mutate: func(in *ProductInput) { in.SalePrice = intPtr(2500) }, fields: []string{"salePrice"}},
		{name: "negative sale", mutate: func(in *ProductInput) { in.SalePrice = intPtr(-5) }, fields: []string{"salePrice"}},
		{
			name: "duplicate flavor",
			mutate: func(in *ProductInput) {
				in.Flavors = []types.Flavor{{Name: "Mint"}, {Name: "Mint"}}
			},
			fields: []string{"flavors[1].name"},
		},
		{
			name: "bad variant",
			mutate: func(in *ProductInput) {
				in.Variants = []types.Variant{{Name: "", Price: intPtr(-1)}}
			},
			fields: []string{"variants[0].name", "variants[0].price"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := validInput()
			tc.mutate(&in)
			errs := in.Validate()
			if len(errs) != len(tc.fields) {
				t.Fatalf("expected %d errors, got %v", len(tc.fields), errs)
			}
			for i, field := range tc.fields {
				if errs[i].Field != field {
					t.Fatalf("expected error %d on %s, got %s", i, field, errs[i].Field)
				}
			}
		})
	}
}

func TestOptionKindOf(t *testing.T) {
	flavors := types.Flavors{{Name: "Mint", InStock: true}}
	variants := types.Variants{{Name: "10mg"}}

	cases := map[OptionKind]models.Product{
		OptionsNone:               {},
		OptionsFlavors:            {Flavors: flavors},
		OptionsVariants:           {Variants: variants},
		OptionsFlavorsAndVariants: {Flavors: flavors, Variants: variants},
	}
	for want, product := range cases {
		if got := OptionKindOf(product); got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if !OptionsFlavorsAndVariants.NeedsFlavor() || !OptionsFlavorsAndVariants.NeedsVariant() {
		t.Fatal("combined kind requires both selections")
	}
	if OptionsFlavors.NeedsVariant() || OptionsVariants.NeedsFlavor() {
		t.Fatal("single kinds must not require the other selection")
	}
}
