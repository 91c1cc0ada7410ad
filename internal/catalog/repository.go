package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
)

const effectivePriceExpr = "COALESCE(sale_price, price)"

type listFilter struct {
	Category *enums.ProductCategory
	Featured *bool
	Brand    string
	MinPrice *int
	MaxPrice *int
	Query    string
	Sort     SortOrder
	Cursor   *pagination.Cursor
	Limit    int
}

// Repository persists catalog products.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Reviews").Create(product).Error
}

// Save writes every column of an existing product.
func (r *Repository) Save(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Reviews").Save(product).Error
}

// FindByID loads the product without reviews.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetail loads the product with its reviews, newest first.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(q *gorm.DB) *gorm.DB { return q.Order("date DESC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes the product and its reviews. It reports whether the product existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("product_id = ?", id).Delete(&models.ProductReview{}).Error; err != nil {
		return false, err
	}
	res := conn.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List applies the browse filters and ordering.
func (r *Repository) List(ctx context.Context, f listFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Reviews", func(q *gorm.DB) *gorm.DB { return q.Order("date DESC") })

	if f.Category != nil {
		if *f.Category == enums.ProductCategoryMostSelling {
			q = q.Where("(category = ? OR most_selling = ?)", *f.Category, true)
		} else {
			q = q.Where("category = ?", *f.Category)
		}
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.Brand != "" {
		q = q.Where("LOWER(brand) = ?", strings.ToLower(f.Brand))
	}
	if f.MinPrice != nil {
		q = q.Where(effectivePriceExpr+" >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where(effectivePriceExpr+" <= ?", *f.MaxPrice)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?)", like, like, like)
	}

	switch f.Sort {
	case SortPriceAsc:
		q = q.Order(effectivePriceExpr + " ASC").Order("id ASC").Limit(pagination.NormalizeLimit(f.Limit))
	case SortPriceDesc:
		q = q.Order(effectivePriceExpr + " DESC").Order("id ASC").Limit(pagination.NormalizeLimit(f.Limit))
	default:
		q = q.Scopes(pagination.Scope(f.Cursor, f.Limit))
	}

	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Brands returns the distinct brand names, optionally within a category.
func (r *Repository) Brands(ctx context.Context, category *enums.ProductCategory) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Distinct("brand").Order("brand ASC")
	if category != nil {
		if *category == enums.ProductCategoryMostSelling {
			q = q.Where("(category = ? OR most_selling = ?)", *category, true)
		} else {
			q = q.Where("category = ?", *category)
		}
	}
	var brands []string
	if err := q.Pluck("brand", &brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

// Count returns the number of products.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}
