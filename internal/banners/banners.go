// Package banners manages the storefront hero slides.
package banners

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

// Input carries the editable banner fields.
type Input struct {
	Title    string `json:"title" validate:"required,max=200"`
	Subtitle string `json:"subtitle" validate:"omitempty,max=500"`
	ImageURL string `json:"imageUrl" validate:"required,url"`
	Link     string `json:"link" validate:"omitempty,max=500"`
	Active   bool   `json:"active"`
	Position int    `json:"position" validate:"gte=0"`
}

type DTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	ImageURL  string    `json:"imageUrl"`
	Link      string    `json:"link"`
	Active    bool      `json:"active"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toDTO(b models.Banner) DTO {
	return DTO{
		ID:        b.ID,
		Title:     b.Title,
		Subtitle:  b.Subtitle,
		ImageURL:  b.ImageURL,
		Link:      b.Link,
		Active:    b.Active,
		Position:  b.Position,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// Service manages banners. The storefront only reads active ones.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]DTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DTO, error)
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

func (s *service) List(ctx context.Context, activeOnly bool) ([]DTO, error) {
	q := s.db.WithContext(ctx).Model(&models.Banner{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var rows []models.Banner
	if err := q.Order("position ASC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list banners")
	}
	out := make([]DTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DTO, error) {
	banner, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*banner)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input Input) (*DTO, error) {
	banner := &models.Banner{}
	apply(banner, input)
	if err := s.db.WithContext(ctx).Create(banner).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert banner")
	}
	dto := toDTO(*banner)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error) {
	banner, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(banner, input)
	if err := s.db.WithContext(ctx).Save(banner).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update banner")
	}
	dto := toDTO(*banner)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "db: delete banner")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := s.db.WithContext(ctx).First(&banner, "id = ?", id).Error; err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load banner")
	}
	return &banner, nil
}

func apply(b *models.Banner, input Input) {
	b.Title = strings.TrimSpace(input.Title)
	b.Subtitle = strings.TrimSpace(input.Subtitle)
	b.ImageURL = strings.TrimSpace(input.ImageURL)
	b.Link = strings.TrimSpace(input.Link)
	b.Active = input.Active
	b.Position = input.Position
}
