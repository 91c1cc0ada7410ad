package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/types"
)

func intPtr(v int) *int { return &v }

func plainProduct(price int, sale *int) models.Product {
	return models.Product{
		ID:        uuid.New(),
		Name:      "Pod",
		Price:     price,
		SalePrice: sale,
		Stock:     10,
		Category:  enums.ProductCategoryPodKits,
		Images:    types.StringList{"https://cdn.example/pod.jpg"},
	}
}

func TestAddToCartMergesSameIdentity(t *testing.T) {
	c := New("c1")
	p := plainProduct(1000, nil)

	if _, err := c.AddToCart(p, Selection{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	line, err := c.AddToCart(p, Selection{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 1 || line.Quantity != 2 {
		t.Fatalf("expected one line with quantity 2, got %d lines, quantity %d", len(c.Items), line.Quantity)
	}
	if line.ImageURL != "https://cdn.example/pod.jpg" {
		t.Fatalf("expected first image as line image, got %q", line.ImageURL)
	}
}

func TestAddToCartSeparatesOptionCombinations(t *testing.T) {
	c := New("c1")
	p := plainProduct(1000, nil)
	p.Flavors = types.Flavors{{Name: "Mint", InStock: true}, {Name: "Mango", InStock: true}}

	if _, err := c.AddToCart(p, Selection{Flavor: "Mint"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.AddToCart(p, Selection{Flavor: "Mango"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.AddToCart(p, Selection{Flavor: " Mint "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Items))
	}
	if c.ItemCount() != 3 {
		t.Fatalf("expected 3 items, got %d", c.ItemCount())
	}
}

func TestAddToCartVariantPriceClearsSale(t *testing.T) {
	c := New("c1")
	p := plainProduct(2000, intPtr(1500))
	p.Variants = types.Variants{
		{Name: "50ml", Price: intPtr(2600), Stock: intPtr(3)},
		{Name: "30ml"},
	}

	line, err := c.AddToCart(p, Selection{Variant: "50ml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Price != 2600 || line.SalePrice != nil || line.Stock != 3 {
		t.Fatalf("expected variant overrides, got price=%d sale=%v stock=%d", line.Price, line.SalePrice, line.Stock)
	}

	line, err = c.AddToCart(p, Selection{Variant: "30ml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.UnitPrice() != 1500 || line.Stock != 10 {
		t.Fatalf("expected product sale price and stock, got unit=%d stock=%d", line.UnitPrice(), line.Stock)
	}
	if c.Total() != 2600+1500 {
		t.Fatalf("unexpected total %d", c.Total())
	}
}

func TestAddToCartRejectsInvalidSelections(t *testing.T) {
	flavored := plainProduct(1000, nil)
	flavored.Flavors = types.Flavors{{Name: "Mint", InStock: true}, {Name: "Grape", InStock: false}}

	both := plainProduct(1000, nil)
	both.Flavors = types.Flavors{{Name: "Mint", InStock: true}}
	both.Variants = types.Variants{{Name: "20mg"}, {Name: "Empty", Stock: intPtr(0)}}

	soldOut := plainProduct(1000, nil)
	soldOut.Stock = 0

	tests := []struct {
		name    string
		product models.Product
		sel     Selection
	}{
		{name: "missing product id", product: models.Product{Price: 10, Stock: 1}},
		{name: "option on plain product", product: plainProduct(1000, nil), sel: Selection{Flavor: "Mint"}},
		{name: "missing flavor", product: flavored},
		{name: "unknown flavor", product: flavored, sel: Selection{Flavor: "Cola"}},
		{name: "flavor out of stock", product: flavored, sel: Selection{Flavor: "Grape"}},
		{name: "variant on flavor-only product", product: flavored, sel: Selection{Flavor: "Mint", Variant: "20mg"}},
		{name: "missing variant on combined product", product: both, sel: Selection{Flavor: "Mint"}},
		{name: "missing flavor on combined product", product: both, sel: Selection{Variant: "20mg"}},
		{name: "variant stock zero", product: both, sel: Selection{Flavor: "Mint", Variant: "Empty"}},
		{name: "product out of stock", product: soldOut},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := New("c1")
			_, err := c.AddToCart(tc.product, tc.sel)
			if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !c.IsEmpty() {
				t.Fatal("cart must stay empty after a rejected add")
			}
		})
	}
}

func TestAddToCartCombinedOptions(t *testing.T) {
	c := New("c1")
	p := plainProduct(1000, nil)
	p.Flavors = types.Flavors{{Name: "Mint", InStock: true}}
	p.Variants = types.Variants{{Name: "20mg", Price: intPtr(1200)}}

	line, err := c.AddToCart(p, Selection{Flavor: "Mint", Variant: "20mg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *line.Flavor != "Mint" || *line.Variant != "20mg" || line.Price != 1200 {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestUpdateQuantity(t *testing.T) {
	c := New("c1")
	p := plainProduct(999, nil)
	line, _ := c.AddToCart(p, Selection{})

	if _, err := c.UpdateQuantity(line.LineID, 0); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for quantity 0, got %v", err)
	}
	if _, err := c.UpdateQuantity("missing", 2); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	updated, err := c.UpdateQuantity(line.LineID, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Quantity != 4 || c.Total() != 3996 {
		t.Fatalf("unexpected state: quantity=%d total=%d", updated.Quantity, c.Total())
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := New("c1")
	a := plainProduct(1799, nil)
	b := plainProduct(999, nil)
	lineA, _ := c.AddToCart(a, Selection{})
	c.AddToCart(a, Selection{})
	c.AddToCart(b, Selection{})

	if c.Total() != 1799*2+999 {
		t.Fatalf("expected total 4597, got %d", c.Total())
	}

	c.RemoveFromCart("unknown")
	if len(c.Items) != 2 {
		t.Fatalf("removing an unknown line must be a no-op, got %d lines", len(c.Items))
	}

	c.RemoveFromCart(lineA.LineID)
	if c.Total() != 999 || c.ItemCount() != 1 {
		t.Fatalf("unexpected totals after remove: %d/%d", c.Total(), c.ItemCount())
	}

	c.ClearCart()
	if c.Total() != 0 || c.ItemCount() != 0 || !c.IsEmpty() {
		t.Fatal("clear must leave an empty cart with zero totals")
	}
}

func TestLineIDIsStableAndURLSafe(t *testing.T) {
	id := uuid.New()
	a := LineID(id, Selection{Variant: "50ml/3mg", Flavor: "Blue Razz"})
	b := LineID(id, Selection{Variant: " 50ml/3mg ", Flavor: "Blue Razz"})
	if a != b {
		t.Fatalf("expected trimmed selections to share an id: %s vs %s", a, b)
	}
	for _, r := range a {
		if r == '/' || r == '+' || r == '=' || r == ' ' {
			t.Fatalf("line id %q is not url safe", a)
		}
	}
}
