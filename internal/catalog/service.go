package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
)

// Service exposes storefront catalog reads and admin product management.
type Service interface {
	List(ctx context.Context, params ListParams) (pagination.Page[ProductDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Lookup(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Brands(ctx context.Context, category string) ([]string, error)
	Create(ctx context.Context, input ProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (pagination.Page[ProductDTO], error) {
	filter, err := buildFilter(params)
	if err != nil {
		return pagination.Page[ProductDTO]{}, err
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.Page[ProductDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toProductDTO(row))
	}
	if filter.Sort != SortNewest {
		// price orderings only serve the first page
		return pagination.Page[ProductDTO]{Items: items}, nil
	}
	return pagination.Build(items, filter.Limit, productCursor), nil
}

func buildFilter(params ListParams) (listFilter, error) {
	sort, err := ParseSortOrder(params.Sort)
	if err != nil {
		return listFilter{}, pkgerrors.Validation("invalid listing parameters", pkgerrors.FieldError{Field: "sort", Message: "must be newest, price-asc or price-desc"})
	}
	filter := listFilter{
		Featured: params.Featured,
		Brand:    strings.TrimSpace(params.Brand),
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Query:    strings.TrimSpace(params.Q),
		Sort:     sort,
		Limit:    pagination.NormalizeLimit(params.Pagination.Limit),
	}

	category, err := parseCategoryFilter(params.Category)
	if err != nil {
		return listFilter{}, err
	}
	filter.Category = category

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return listFilter{}, pkgerrors.Validation("invalid listing parameters", pkgerrors.FieldError{Field: "minPrice", Message: "must not exceed maxPrice"})
	}

	if sort == SortNewest {
		cursor, err := pagination.ParseCursor(params.Pagination.Cursor)
		if err != nil {
			return listFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		filter.Cursor = cursor
	}
	return filter, nil
}

func parseCategoryFilter(raw string) (*enums.ProductCategory, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, enums.CategorySlugAll) {
		return nil, nil
	}
	category, err := enums.ParseProductCategory(raw)
	if err != nil {
		return nil, pkgerrors.Validation("invalid listing parameters", pkgerrors.FieldError{Field: "category", Message: "is not a known category"})
	}
	return &category, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

// Lookup returns the stored product for cart and order pricing.
func (s *service) Lookup(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.Validation("product id is required", pkgerrors.FieldError{Field: "productId", Message: "is required"})
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return product, nil
}

func (s *service) Brands(ctx context.Context, category string) ([]string, error) {
	parsed, err := parseCategoryFilter(category)
	if err != nil {
		return nil, err
	}
	brands, err := s.repo.Brands(ctx, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list brands")
	}
	if brands == nil {
		brands = []string{}
	}
	return brands, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	if errs := input.Validate(); len(errs) > 0 {
		return nil, pkgerrors.Validation("invalid product", errs...)
	}
	product := &models.Product{}
	input.ApplyTo(product)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	dto := toProductDTO(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	if errs := input.Validate(); len(errs) > 0 {
		return nil, pkgerrors.Validation("invalid product", errs...)
	}
	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		input.ApplyTo(product)
		if err := txRepo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		updated, err = txRepo.FindDetail(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toProductDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		found, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
}

func mapLoadError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
}
