package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

type redisStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(cartID string) string
}

// Store persists carts as JSON documents with a sliding TTL.
type Store struct {
	redis redisStore
	ttl   time.Duration
	now   func() time.Time
}

// NewStore builds a cart store. Every save pushes the expiry out by ttl.
func NewStore(r redisStore, ttl time.Duration) (*Store, error) {
	if r == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Store{redis: r, ttl: ttl, now: time.Now}, nil
}

// Create mints a new empty cart and saves it.
func (s *Store) Create(ctx context.Context) (*Cart, error) {
	c := New(uuid.NewString())
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Load returns the stored cart. Unknown or expired ids are not found.
func (s *Store) Load(ctx context.Context, cartID string) (*Cart, error) {
	if _, err := uuid.Parse(cartID); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	raw, err := s.redis.GetBytes(ctx, s.redis.CartKey(cartID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load cart")
	}
	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart")
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	c.ID = cartID
	return &c, nil
}

// Save writes the cart and refreshes its TTL.
func (s *Store) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(c)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.redis.Set(ctx, s.redis.CartKey(c.ID), raw, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: save cart")
	}
	return nil
}
