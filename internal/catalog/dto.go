package catalog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
	"github.com/vaporhaus/storefront-backend/pkg/types"
)

// SortOrder selects the listing order.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
)

// ParseSortOrder defaults to newest for a blank value.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortNewest:
		return SortNewest, nil
	case SortPriceAsc:
		return SortPriceAsc, nil
	case SortPriceDesc:
		return SortPriceDesc, nil
	}
	return "", fmt.Errorf("invalid sort %q", value)
}

// ListParams are the storefront browse filters.
type ListParams struct {
	Category   string
	Featured   *bool
	Brand      string
	MinPrice   *int
	MaxPrice   *int
	Sort       string
	Q          string
	Pagination pagination.Params
}

// RatingDTO is a review embedded in a product read.
type RatingDTO struct {
	ID               uuid.UUID `json:"id"`
	Rating           int       `json:"rating"`
	Content          string    `json:"content"`
	CustomerName     string    `json:"customerName"`
	IsCustomerReview bool      `json:"isCustomerReview"`
	Date             time.Time `json:"date"`
}

// ProductDTO is the public product shape.
type ProductDTO struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Price          int                   `json:"price"`
	SalePrice      *int                  `json:"salePrice,omitempty"`
	EffectivePrice int                   `json:"effectivePrice"`
	Stock          int                   `json:"stock"`
	Category       enums.ProductCategory `json:"category"`
	CategorySlug   string                `json:"categorySlug"`
	Brand          string                `json:"brand"`
	ImageURL       string                `json:"imageUrl"`
	Images         []string              `json:"images"`
	Flavors        []types.Flavor        `json:"flavors"`
	Variants       []types.Variant       `json:"variants"`
	OptionKind     OptionKind            `json:"optionKind"`
	Featured       bool                  `json:"featured"`
	MostSelling    bool                  `json:"mostSelling"`
	Ratings        []RatingDTO           `json:"ratings"`
	AverageRating  float64               `json:"averageRating"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// CategoryDTO pairs a stored category label with its URL slug.
type CategoryDTO struct {
	Name enums.ProductCategory `json:"name"`
	Slug string                `json:"slug"`
}

// Categories lists the storefront categories in display order.
func Categories() []CategoryDTO {
	categories := enums.ProductCategories()
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryDTO{Name: c, Slug: c.Slug()})
	}
	return out
}

func toProductDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		SalePrice:      copyInt(p.SalePrice),
		EffectivePrice: p.EffectivePrice(),
		Stock:          p.Stock,
		Category:       p.Category,
		CategorySlug:   p.Category.Slug(),
		Brand:          p.Brand,
		ImageURL:       p.ImageURL,
		Images:         append([]string{}, p.Images...),
		Flavors:        append([]types.Flavor{}, p.Flavors...),
		Variants:       append([]types.Variant{}, p.Variants...),
		OptionKind:     OptionKindOf(p),
		Featured:       p.Featured,
		MostSelling:    p.MostSelling,
		Ratings:        make([]RatingDTO, 0, len(p.Reviews)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
		dto.Ratings = append(dto.Ratings, RatingDTO{
			ID:               r.ID,
			Rating:           r.Rating,
			Content:          r.Content,
			CustomerName:     r.CustomerName,
			IsCustomerReview: r.IsCustomerReview,
			Date:             r.Date,
		})
	}
	if len(p.Reviews) > 0 {
		dto.AverageRating = math.Round(float64(sum)/float64(len(p.Reviews))*10) / 10
	}
	return dto
}

func productCursor(p ProductDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}
