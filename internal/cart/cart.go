// Package cart holds the shopping cart engine and its Redis-backed persistence.
package cart

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

// Selection carries the shopper's chosen options. Blank means not chosen.
type Selection struct {
	Flavor  string `json:"flavor,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// LineItem is one product/option combination in a cart.
type LineItem struct {
	LineID    string                `json:"lineId"`
	ProductID uuid.UUID             `json:"productId"`
	Name      string                `json:"name"`
	ImageURL  string                `json:"imageUrl"`
	Category  enums.ProductCategory `json:"category"`
	Price     int                   `json:"price"`
	SalePrice *int                  `json:"salePrice,omitempty"`
	Quantity  int                   `json:"quantity"`
	Variant   *string               `json:"variant,omitempty"`
	Flavor    *string               `json:"flavor,omitempty"`
	Stock     int                   `json:"stock"`
}

// UnitPrice is the sale price when present, else the line price.
func (l LineItem) UnitPrice() int {
	if l.SalePrice != nil {
		return *l.SalePrice
	}
	return l.Price
}

// Subtotal is the unit price times quantity.
func (l LineItem) Subtotal() int {
	return l.UnitPrice() * l.Quantity
}

// Cart is an ordered collection of line items.
type Cart struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// New returns an empty cart with the given id.
func New(id string) *Cart {
	return &Cart{ID: id, Items: []LineItem{}}
}

// LineID builds the composite identity of a product and its chosen options.
func LineID(productID uuid.UUID, sel Selection) string {
	raw := productID.String() + "|" + strings.TrimSpace(sel.Variant) + "|" + strings.TrimSpace(sel.Flavor)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

type resolvedLine struct {
	price     int
	salePrice *int
	stock     int
	flavor    *string
	variant   *string
}

// AddToCart adds one unit of the product with the chosen options. A line with the
// same identity has its quantity incremented instead.
func (c *Cart) AddToCart(product models.Product, sel Selection) (LineItem, error) {
	if product.ID == uuid.Nil {
		return LineItem{}, pkgerrors.Validation("product id is required", pkgerrors.FieldError{Field: "productId", Message: "is required"})
	}
	sel = Selection{Flavor: strings.TrimSpace(sel.Flavor), Variant: strings.TrimSpace(sel.Variant)}

	resolved, err := resolve(product, sel)
	if err != nil {
		return LineItem{}, err
	}
	if resolved.stock <= 0 {
		return LineItem{}, pkgerrors.Validation("product is out of stock", pkgerrors.FieldError{Field: "stock", Message: "out of stock"})
	}

	id := LineID(product.ID, sel)
	for i := range c.Items {
		if c.Items[i].LineID == id {
			c.Items[i].Quantity++
			return c.Items[i], nil
		}
	}

	line := LineItem{
		LineID:    id,
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  primaryImage(product),
		Category:  product.Category,
		Price:     resolved.price,
		SalePrice: resolved.salePrice,
		Quantity:  1,
		Variant:   resolved.variant,
		Flavor:    resolved.flavor,
		Stock:     resolved.stock,
	}
	c.Items = append(c.Items, line)
	return line, nil
}

func resolve(product models.Product, sel Selection) (resolvedLine, error) {
	out := resolvedLine{price: product.Price, stock: product.Stock}
	if product.SalePrice != nil {
		sale := *product.SalePrice
		out.salePrice = &sale
	}

	kind := catalog.OptionKindOf(product)
	switch kind {
	case catalog.OptionsNone:
		if sel.Flavor != "" || sel.Variant != "" {
			return out, optionError("options", "product has no selectable options")
		}
	case catalog.OptionsFlavors:
		if sel.Variant != "" {
			return out, optionError("variant", "product has no variants")
		}
	case catalog.OptionsVariants:
		if sel.Flavor != "" {
			return out, optionError("flavor", "product has no flavors")
		}
	case catalog.OptionsFlavorsAndVariants:
	default:
		return out, pkgerrors.New(pkgerrors.CodeInternal, "unknown option kind")
	}

	if kind.NeedsVariant() {
		if sel.Variant == "" {
			return out, optionError("variant", "is required")
		}
		variant, ok := product.Variants.Find(sel.Variant)
		if !ok {
			return out, optionError("variant", "is not offered")
		}
		if variant.Price != nil {
			out.price = *variant.Price
			out.salePrice = nil
		}
		if variant.Stock != nil {
			out.stock = *variant.Stock
		}
		name := variant.Name
		out.variant = &name
	}

	if kind.NeedsFlavor() {
		if sel.Flavor == "" {
			return out, optionError("flavor", "is required")
		}
		flavor, ok := product.Flavors.Find(sel.Flavor)
		if !ok {
			return out, optionError("flavor", "is not offered")
		}
		if !flavor.InStock {
			return out, optionError("flavor", "out of stock")
		}
		name := flavor.Name
		out.flavor = &name
	}
	return out, nil
}

func optionError(field, message string) error {
	return pkgerrors.Validation("invalid product options", pkgerrors.FieldError{Field: field, Message: message})
}

func primaryImage(p models.Product) string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// UpdateQuantity replaces the quantity of an existing line.
func (c *Cart) UpdateQuantity(lineID string, quantity int) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, pkgerrors.Validation("quantity must be at least 1", pkgerrors.FieldError{Field: "quantity", Message: "must be at least 1"})
	}
	for i := range c.Items {
		if c.Items[i].LineID == lineID {
			c.Items[i].Quantity = quantity
			return c.Items[i], nil
		}
	}
	return LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
}

// RemoveFromCart deletes the line. Unknown ids are ignored.
func (c *Cart) RemoveFromCart(lineID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.LineID != lineID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// ClearCart empties the cart.
func (c *Cart) ClearCart() {
	c.Items = []LineItem{}
}

// Total sums unit price times quantity over all lines.
func (c *Cart) Total() int {
	total := 0
	for _, item := range c.Items {
		if item.Quantity > 0 {
			total += item.Subtotal()
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// ItemCount sums quantities over all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		if item.Quantity > 0 {
			count += item.Quantity
		}
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
