package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaporhaus/storefront-backend/internal/cart"
	"github.com/vaporhaus/storefront-backend/internal/orders"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	Load(ctx context.Context, cartID string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
}

// Identity is the signed-in shopper, if any.
type Identity struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Input is a checkout submission.
type Input struct {
	CartID   string
	Shipping orders.ShippingForm
	Identity *Identity
}

// Service turns a cart into a pending order.
type Service interface {
	Submit(ctx context.Context, input Input) (*orders.OrderDTO, error)
}

type service struct {
	tx      txRunner
	carts   cartStore
	orders  orders.Repository
	outbox  outbox.Emitter
	metrics *metrics.CommerceMetrics
	logg    *logger.Logger
}

// NewService builds the checkout service. metrics may be nil.
func NewService(tx txRunner, carts cartStore, ordersRepo orders.Repository, emitter outbox.Emitter, m *metrics.CommerceMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{tx: tx, carts: carts, orders: ordersRepo, outbox: emitter, metrics: m, logg: logg}, nil
}

// Submit validates the form, snapshots the cart into an order inside one
// transaction and empties the cart once the order is committed. The cart id
// stays valid for further shopping.
func (s *service) Submit(ctx context.Context, input Input) (*orders.OrderDTO, error) {
	shipping := input.Shipping.Normalize()
	if err := shipping.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CartID) == "" {
		return nil, pkgerrors.Validation("cart id is required", pkgerrors.FieldError{Field: "cartId", Message: "is required"})
	}

	ctx = s.logg.WithCartID(ctx, input.CartID)
	c, err := s.carts.Load(ctx, input.CartID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, pkgerrors.Validation("cart is empty", pkgerrors.FieldError{Field: "items", Message: "cart is empty"})
	}

	items, total := orders.Snapshot(c.Items)
	order := &models.Order{
		UserName:  shipping.Name,
		UserEmail: shipping.Email,
		UserPhone: shipping.Phone,
		IsGuest:   true,
		Total:     total,
		Status:    enums.OrderStatusPending,
		Street:    shipping.Street,
		City:      shipping.City,
		State:     shipping.State,
		Pincode:   shipping.Pincode,
		Items:     items,
	}
	var actor *outbox.ActorRef
	if input.Identity != nil && input.Identity.UserID != uuid.Nil {
		userID := input.Identity.UserID
		order.UserID = &userID
		order.IsGuest = false
		actor = &outbox.ActorRef{UserID: userID, Role: string(input.Identity.Role)}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderCreatedEvent{
				OrderID:      order.ID,
				UserID:       order.UserID,
				IsGuest:      order.IsGuest,
				CustomerName: order.UserName,
				Email:        order.UserEmail,
				Phone:        order.UserPhone,
				Total:        order.Total,
				ItemCount:    c.ItemCount(),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "outbox: emit order created")
		}
		return nil
	})
	if err != nil {
		s.logg.Error(ctx, "checkout failed", err)
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "total": order.Total, "guest": order.IsGuest})
	c.ClearCart()
	if err := s.carts.Save(ctx, c); err != nil {
		s.logg.Warn(logCtx, "order committed but cart was not cleared: "+err.Error())
	}
	s.metrics.OrderPlaced(order.IsGuest, order.Total)
	s.logg.Info(logCtx, "order placed")

	dto := orders.ToDTO(*order)
	return &dto, nil
}
