// Package reviews manages product ratings across the catalog.
package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
)

// Input is the review body. CustomerName is ignored for customer-authored reviews.
type Input struct {
	Rating       int        `json:"rating" validate:"min=1,max=5"`
	Content      string     `json:"content" validate:"required,max=2000"`
	CustomerName string     `json:"customerName" validate:"omitempty,max=120"`
	Date         *time.Time `json:"date"`
}

// Author identifies who is adding a review.
type Author struct {
	UserID      uuid.UUID
	DisplayName string
	Role        enums.UserRole
}

type DTO struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"productId"`
	ProductName      string     `json:"productName,omitempty"`
	Rating           int        `json:"rating"`
	Content          string     `json:"content"`
	CustomerName     string     `json:"customerName"`
	CustomerID       *uuid.UUID `json:"customerId,omitempty"`
	IsCustomerReview bool       `json:"isCustomerReview"`
	Date             time.Time  `json:"date"`
}

type reviewRow struct {
	models.ProductReview
	ProductName string `gorm:"column:product_name"`
}

func toDTO(r models.ProductReview, productName string) DTO {
	return DTO{
		ID:               r.ID,
		ProductID:        r.ProductID,
		ProductName:      productName,
		Rating:           r.Rating,
		Content:          r.Content,
		CustomerName:     r.CustomerName,
		CustomerID:       r.CustomerID,
		IsCustomerReview: r.IsCustomerReview,
		Date:             r.Date,
	}
}

// ListParams are the admin review table inputs.
type ListParams struct {
	Filter string
	Page   int
	Limit  int
}

type Service interface {
	List(ctx context.Context, params ListParams) (pagination.OffsetPage[DTO], error)
	Add(ctx context.Context, productID uuid.UUID, input Input, author Author) (*DTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type service struct {
	db *gorm.DB
}

func NewService(conn *gorm.DB) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: conn}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (pagination.OffsetPage[DTO], error) {
	filter, err := enums.ParseReviewFilter(strings.TrimSpace(params.Filter))
	if err != nil {
		return pagination.OffsetPage[DTO]{}, pkgerrors.Validation("invalid listing parameters", pkgerrors.FieldError{Field: "filter", Message: "must be all, customer or admin"})
	}

	q := s.db.WithContext(ctx).
		Table("product_reviews AS r").
		Joins("JOIN products p ON p.id = r.product_id")
	switch filter {
	case enums.ReviewFilterCustomer:
		q = q.Where("r.is_customer_review = ?", true)
	case enums.ReviewFilterAdmin:
		q = q.Where("r.is_customer_review = ?", false)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return pagination.OffsetPage[DTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count reviews")
	}
	var rows []reviewRow
	err = q.Select("r.*, p.name AS product_name").
		Order("r.date DESC").Order("r.id DESC").
		Offset(pagination.Offset(params.Page, params.Limit)).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Scan(&rows).Error
	if err != nil {
		return pagination.OffsetPage[DTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reviews")
	}
	items := make([]DTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row.ProductReview, row.ProductName))
	}
	return pagination.NewOffsetPage(items, total, params.Page, params.Limit), nil
}

// Add appends a review. Customer reviews carry the author's name and id.
func (s *service) Add(ctx context.Context, productID uuid.UUID, input Input, author Author) (*DTO, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	var product models.Product
	if err := s.db.WithContext(ctx).Select("id", "name").First(&product, "id = ?", productID).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	review := &models.ProductReview{
		ProductID: productID,
		Rating:    input.Rating,
		Content:   strings.TrimSpace(input.Content),
	}
	if input.Date != nil {
		review.Date = input.Date.UTC()
	}
	if author.Role == enums.UserRoleAdmin {
		review.CustomerName = strings.TrimSpace(input.CustomerName)
		if review.CustomerName == "" {
			return nil, pkgerrors.Validation("invalid review", pkgerrors.FieldError{Field: "customerName", Message: "is required"})
		}
	} else {
		if author.UserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to leave a review")
		}
		userID := author.UserID
		review.CustomerID = &userID
		review.CustomerName = strings.TrimSpace(author.DisplayName)
		review.IsCustomerReview = true
	}

	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert review")
	}
	dto := toDTO(*review, product.Name)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error) {
	if err := validate(input); err != nil {
		return nil, err
	}
	var review models.ProductReview
	if err := s.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load review")
	}
	review.Rating = input.Rating
	review.Content = strings.TrimSpace(input.Content)
	if name := strings.TrimSpace(input.CustomerName); name != "" && !review.IsCustomerReview {
		review.CustomerName = name
	}
	if input.Date != nil {
		review.Date = input.Date.UTC()
	}
	if err := s.db.WithContext(ctx).Save(&review).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update review")
	}
	dto := toDTO(review, "")
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.ProductReview{}, "id = ?", id)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: delete review")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ProductReview{}).Count(&n).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count reviews")
	}
	return n, nil
}

func validate(input Input) error {
	var fields []pkgerrors.FieldError
	if input.Rating < 1 || input.Rating > 5 {
		fields = append(fields, pkgerrors.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}
	if strings.TrimSpace(input.Content) == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "content", Message: "is required"})
	}
	if len(fields) > 0 {
		return pkgerrors.Validation("invalid review", fields...)
	}
	return nil
}
