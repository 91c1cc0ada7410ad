package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lock keeps two cron workers from ticking at the same time.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Gate remembers that a job ran recently. Claim succeeds at most once per
// cadence window across every worker sharing the store.
type Gate interface {
	Claim(ctx context.Context, job string, every time.Duration) (bool, error)
	Forget(ctx context.Context, job string) error
}

type keyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

const defaultLockTTL = 10 * time.Minute

// RedisLock is a token-owned key that expires on its own if the holder dies.
type RedisLock struct {
	store keyStore
	key   string
	ttl   time.Duration
	token string
}

func NewRedisLock(store keyStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("cron lock: key store required")
	}
	if key == "" {
		return nil, errors.New("cron lock: key required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	won, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("take %s: %w", l.key, err)
	}
	if won {
		l.token = token
	}
	return won, nil
}

// Release deletes the key only while it still carries this holder's token.
func (l *RedisLock) Release(ctx context.Context) error {
	token := l.token
	if token == "" {
		return nil
	}
	l.token = ""
	if _, err := l.store.CompareAndDelete(ctx, l.key, token); err != nil {
		return fmt.Errorf("drop %s: %w", l.key, err)
	}
	return nil
}

// RedisGate stores one "last ran" key per job with a TTL equal to its cadence.
type RedisGate struct {
	store  keyStore
	prefix string
	now    func() time.Time
}

func NewRedisGate(store keyStore, prefix string) (*RedisGate, error) {
	if store == nil {
		return nil, errors.New("cron gate: key store required")
	}
	return &RedisGate{store: store, prefix: prefix, now: time.Now}, nil
}

func (g *RedisGate) Claim(ctx context.Context, job string, every time.Duration) (bool, error) {
	claimed, err := g.store.SetNX(ctx, g.key(job), g.now().UTC().Format(time.RFC3339), every)
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", job, err)
	}
	return claimed, nil
}

// Forget clears a claim so the job is due again on the next tick.
func (g *RedisGate) Forget(ctx context.Context, job string) error {
	if err := g.store.Del(ctx, g.key(job)); err != nil {
		return fmt.Errorf("forget %s: %w", job, err)
	}
	return nil
}

func (g *RedisGate) key(job string) string {
	return g.prefix + job
}
