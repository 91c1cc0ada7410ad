package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
)

type productLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// AddItemInput is the payload for adding a product to a cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Flavor    string    `json:"flavor"`
	Variant   string    `json:"variant"`
}

// View is a cart with its derived totals.
type View struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	Total     int        `json:"total"`
	ItemCount int        `json:"itemCount"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewView snapshots c with its totals.
func NewView(c *Cart) *View {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return &View{
		ID:        c.ID,
		Items:     items,
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		UpdatedAt: c.UpdatedAt,
	}
}

// Service loads, mutates and saves carts.
type Service interface {
	Create(ctx context.Context) (*View, error)
	Get(ctx context.Context, cartID string) (*View, error)
	AddItem(ctx context.Context, cartID string, input AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, cartID, lineID string, quantity int) (*View, error)
	RemoveItem(ctx context.Context, cartID, lineID string) (*View, error)
	Clear(ctx context.Context, cartID string) (*View, error)
}

type service struct {
	store    *Store
	products productLookup
	metrics  *metrics.CommerceMetrics
	logg     *logger.Logger
}

// NewService wires the cart service. metrics may be nil.
func NewService(store *Store, products productLookup, m *metrics.CommerceMetrics, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{store: store, products: products, metrics: m, logg: logg}, nil
}

func (s *service) Create(ctx context.Context) (*View, error) {
	c, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.CartMutation("create")
	return NewView(c), nil
}

func (s *service) Get(ctx context.Context, cartID string) (*View, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return NewView(c), nil
}

func (s *service) AddItem(ctx context.Context, cartID string, input AddItemInput) (*View, error) {
	return s.mutate(ctx, cartID, "add", func(c *Cart) error {
		product, err := s.products.Lookup(ctx, input.ProductID)
		if err != nil {
			return err
		}
		line, err := c.AddToCart(*product, Selection{Flavor: input.Flavor, Variant: input.Variant})
		if err != nil {
			return err
		}
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"line_id": line.LineID, "quantity": line.Quantity}), "cart line added")
		return nil
	})
}

func (s *service) UpdateItem(ctx context.Context, cartID, lineID string, quantity int) (*View, error) {
	return s.mutate(ctx, cartID, "update", func(c *Cart) error {
		_, err := c.UpdateQuantity(lineID, quantity)
		return err
	})
}

func (s *service) RemoveItem(ctx context.Context, cartID, lineID string) (*View, error) {
	return s.mutate(ctx, cartID, "remove", func(c *Cart) error {
		c.RemoveFromCart(lineID)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, cartID string) (*View, error) {
	return s.mutate(ctx, cartID, "clear", func(c *Cart) error {
		c.ClearCart()
		return nil
	})
}

// mutate applies fn to the stored cart and saves it. Concurrent writers to one
// cart id are last-write-wins.
func (s *service) mutate(ctx context.Context, cartID, op string, fn func(*Cart) error) (*View, error) {
	ctx = s.logg.WithCartID(ctx, cartID)
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	s.metrics.CartMutation(op)
	return NewView(c), nil
}
