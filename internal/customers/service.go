package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
)

// Input carries the editable customer fields.
type Input struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Address     string `json:"address" validate:"omitempty,max=500"`
	TotalOrders int    `json:"totalOrders" validate:"gte=0"`
	TotalSpent  int    `json:"totalSpent" validate:"gte=0"`
}

// DTO is the customer shape returned by the API.
type DTO struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"userId,omitempty"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	TotalOrders int        `json:"totalOrders"`
	TotalSpent  int        `json:"totalSpent"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toDTO(c models.Customer) DTO {
	return DTO{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		TotalOrders: c.TotalOrders,
		TotalSpent:  c.TotalSpent,
		CreatedAt:   c.CreatedAt,
	}
}

// ListParams are the admin table inputs.
type ListParams struct {
	Search string
	Page   int
	Limit  int
}

// Service manages customer records for the back office.
type Service interface {
	List(ctx context.Context, params ListParams) (pagination.OffsetPage[DTO], error)
	Get(ctx context.Context, id uuid.UUID) (*DTO, error)
	Create(ctx context.Context, input Input) (*DTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (pagination.OffsetPage[DTO], error) {
	rows, total, err := s.repo.List(ctx, strings.TrimSpace(params.Search), pagination.Offset(params.Page, params.Limit), pagination.NormalizeLimit(params.Limit))
	if err != nil {
		return pagination.OffsetPage[DTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	items := make([]DTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toDTO(row))
	}
	return pagination.NewOffsetPage(items, total, params.Page, params.Limit), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "load")
	}
	dto := toDTO(*customer)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input Input) (*DTO, error) {
	customer := &models.Customer{}
	apply(customer, input)
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, mapError(err, "insert")
	}
	dto := toDTO(*customer)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*DTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "load")
	}
	apply(customer, input)
	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, mapError(err, "update")
	}
	dto := toDTO(*customer)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapError(err, "delete")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}

func apply(c *models.Customer, input Input) {
	c.Name = strings.TrimSpace(input.Name)
	c.Email = strings.ToLower(strings.TrimSpace(input.Email))
	c.Phone = strings.TrimSpace(input.Phone)
	c.Address = strings.TrimSpace(input.Address)
	c.TotalOrders = input.TotalOrders
	c.TotalSpent = input.TotalSpent
}

func mapError(err error, op string) error {
	switch {
	case db.IsNotFound(err):
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.New(pkgerrors.CodeConflict, "a customer with this email already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: "+op+" customer")
}
