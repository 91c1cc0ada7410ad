package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/internal/cart"
	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/payloads"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CreateItemInput is one product line of an admin-entered order.
type CreateItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"min=1"`
	Flavor    string    `json:"flavor"`
	Variant   string    `json:"variant"`
}

// CreateInput is an order entered by the back office on a customer's behalf.
type CreateInput struct {
	Shipping ShippingForm      `json:"shipping"`
	UserID   *uuid.UUID        `json:"userId"`
	Items    []CreateItemInput `json:"items" validate:"required,min=1,dive"`
}

// Service exposes admin order management.
type Service interface {
	List(ctx context.Context, params ListParams) (pagination.OffsetPage[OrderDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor *outbox.ActorRef) (*OrderDTO, error)
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outbox.Emitter
	products productLookup
	logg     *logger.Logger
}

// NewService builds the admin orders service.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter, products productLookup, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, tx: tx, outbox: emitter, products: products, logg: logg}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (pagination.OffsetPage[OrderDTO], error) {
	sort, err := ParseSortOrder(params.Sort)
	if err != nil {
		return pagination.OffsetPage[OrderDTO]{}, pkgerrors.Validation("invalid listing parameters", pkgerrors.FieldError{Field: "sort", Message: "is not supported"})
	}
	filter := ListFilter{
		Search: strings.TrimSpace(params.Search),
		Sort:   sort,
		Offset: pagination.Offset(params.Page, params.Limit),
		Limit:  pagination.NormalizeLimit(params.Limit),
	}
	if raw := strings.TrimSpace(params.Status); raw != "" && !strings.EqualFold(raw, "all") {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return pagination.OffsetPage[OrderDTO]{}, pkgerrors.Validation("invalid listing parameters", pkgerrors.FieldError{Field: "status", Message: "is not a known status"})
		}
		filter.Status = &status
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return pagination.OffsetPage[OrderDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToDTO(row))
	}
	return pagination.NewOffsetPage(items, total, params.Page, params.Limit), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	dto := ToDTO(*order)
	return &dto, nil
}

// UpdateStatus moves the order to any known status. Setting the current status is a no-op.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string, actor *outbox.ActorRef) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Validation("invalid order status", pkgerrors.FieldError{Field: "status", Message: "is not a known status"})
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		if current.Status != status {
			if err := repo.UpdateStatus(ctx, id, status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   id,
				Actor:         actor,
				Data:          payloads.OrderStatusChangedEvent{OrderID: id, From: current.Status, To: status},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "outbox: emit order status change")
			}
		}
		updated, err = repo.FindDetail(ctx, id)
		if err != nil {
			return mapLoadError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": id.String(), "status": status}), "order status updated")
	dto := ToDTO(*updated)
	return &dto, nil
}

// Create prices each product at its current effective unit price and stores the
// order as Processing.
func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	input.Shipping = input.Shipping.Normalize()
	if err := ValidateStruct("invalid order", input); err != nil {
		return nil, err
	}

	draft := cart.New("")
	for i, item := range input.Items {
		product, err := s.products.Lookup(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		line, err := draft.AddToCart(*product, cart.Selection{Flavor: item.Flavor, Variant: item.Variant})
		if err != nil {
			return nil, withItemIndex(err, i)
		}
		if _, err := draft.UpdateQuantity(line.LineID, line.Quantity-1+item.Quantity); err != nil {
			return nil, withItemIndex(err, i)
		}
	}

	items, total := Snapshot(draft.Items)
	order := &models.Order{
		UserID:    input.UserID,
		UserName:  input.Shipping.Name,
		UserEmail: input.Shipping.Email,
		UserPhone: input.Shipping.Phone,
		IsGuest:   input.UserID == nil,
		Total:     total,
		Status:    enums.OrderStatusProcessing,
		Street:    input.Shipping.Street,
		City:      input.Shipping.City,
		State:     input.Shipping.State,
		Pincode:   input.Shipping.Pincode,
		Items:     items,
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
	}
	dto := ToDTO(*order)
	return &dto, nil
}

func withItemIndex(err error, index int) error {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		return err
	}
	return typed.WithDetails(map[string]any{"item": index, "errors": typed.Details()})
}

func mapLoadError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
}
