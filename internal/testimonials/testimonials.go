// Package testimonials manages customer quotes shown on the storefront.
package testimonials

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

type Input struct {
	CustomerName string     `json:"customerName" validate:"required,max=120"`
	Title        string     `json:"title" validate:"omitempty,max=200"`
	Content      string     `json:"content" validate:"required"`
	Rating       int        `json:"rating" validate:"min=1,max=5"`
	Location     string     `json:"location" validate:"omitempty,max=120"`
	Date         *time.Time `json:"date"`
}

type DTO struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customerName"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Rating       int       `json:"rating"`
	Location     string    `json:"location"`
	Date         time.Time `json:"date"`
}

func toDTO(t models.Testimonial) DTO {
	return DTO{
		ID:           t.ID,
		CustomerName: t.CustomerName,
		Title:        t.Title,
		Content:      t.Content,
		Rating:       t.Rating,
		Location:     t.Location,
		Date:         t.Date,
	}
}

type Service interface {
	List(ctx context.Context, limit int) ([]DTO, error)
	Create(ctx context.Context, input Input) (*DTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
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

// List returns testimonials newest first. A non-positive limit returns all.
func (s *service) List(ctx context.Context, limit int) ([]DTO, error) {
	q := s.db.WithContext(ctx).Order("date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Testimonial
	if err := q.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list testimonials")
	}
	out := make([]DTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input Input) (*DTO, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	row := &models.Testimonial{}
	apply(row, input)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert testimonial")
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error) {
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	var row models.Testimonial
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "testimonial not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load testimonial")
	}
	apply(&row, input)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update testimonial")
	}
	dto := toDTO(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Testimonial{}, "id = ?", id)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: delete testimonial")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "testimonial not found")
	}
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return pkgerrors.Validation("invalid testimonial", pkgerrors.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}
	return nil
}

func apply(t *models.Testimonial, input Input) {
	t.CustomerName = strings.TrimSpace(input.CustomerName)
	t.Title = strings.TrimSpace(input.Title)
	t.Content = strings.TrimSpace(input.Content)
	t.Rating = input.Rating
	t.Location = strings.TrimSpace(input.Location)
	if input.Date != nil {
		t.Date = input.Date.UTC()
	}
}
