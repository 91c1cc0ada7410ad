package orders

import (
	"strings"

	"github.com/vaporhaus/storefront-backend/internal/cart"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
)

// Snapshot copies cart lines into order items and returns their total.
// Quantities below 1 are stored as 1 and blank options are dropped.
func Snapshot(lines []cart.LineItem) ([]models.OrderItem, int) {
	items := make([]models.OrderItem, 0, len(lines))
	total := 0
	for i, line := range lines {
		item := models.OrderItem{
			Position:  i,
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			SalePrice: copyInt(line.SalePrice),
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
			Flavor:    optionalString(line.Flavor),
			Variant:   optionalString(line.Variant),
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		total += item.UnitPrice() * item.Quantity
		items = append(items, item)
	}
	return items, total
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func optionalString(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
