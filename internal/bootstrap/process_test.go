package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
)

type exitRecorder struct {
	codes []int
}

func (e *exitRecorder) exit(code int) { e.codes = append(e.codes, code) }

func newTestProcess(t *testing.T) (*Process, *exitRecorder, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	rec := &exitRecorder{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &Process{
		Config: &config.Config{},
		Logger: logger.New(logger.Options{ServiceName: "test", Level: "debug", Output: &out}),
		ctx:    ctx,
		stop:   cancel,
		exit:   rec.exit,
	}, rec, &out
}

func TestCloseRunsNewestFirstAndJoinsErrors(t *testing.T) {
	p, _, out := newTestProcess(t)
	var order []string
	p.OnClose("database", func() error { order = append(order, "database"); return errors.New("conn busy") })
	p.OnClose("redis", func() error { order = append(order, "redis"); return nil })
	p.OnClose("pubsub", func() error { order = append(order, "pubsub"); return errors.New("flush timeout") })

	err := p.Close()

	assert.Equal(t, []string{"pubsub", "redis", "database"}, order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pubsub: flush timeout")
	assert.Contains(t, err.Error(), "database: conn busy")
	assert.Contains(t, out.String(), "error closing pubsub")
	assert.ErrorIs(t, p.Context().Err(), context.Canceled)

	order = nil
	require.NoError(t, p.Close())
	assert.Empty(t, order, "closers run once")
}

func TestMustIgnoresNil(t *testing.T) {
	p, rec, _ := newTestProcess(t)
	closed := false
	p.OnClose("redis", func() error { closed = true; return nil })

	p.Must("bootstrap redis", nil)

	assert.Empty(t, rec.codes)
	assert.False(t, closed)
}

func TestMustClosesAndExits(t *testing.T) {
	p, rec, out := newTestProcess(t)
	closed := false
	p.OnClose("database", func() error { closed = true; return nil })

	p.Must("bootstrap redis", errors.New("dial tcp: refused"))

	assert.Equal(t, []int{1}, rec.codes)
	assert.True(t, closed)
	assert.Contains(t, out.String(), "failed to bootstrap redis")
}

func TestServeTreatsCancelAsCleanStop(t *testing.T) {
	p, rec, out := newTestProcess(t)
	closed := false
	p.OnClose("database", func() error { closed = true; return nil })

	p.Serve("outbox publisher", func(context.Context) error { return context.Canceled })

	assert.Empty(t, rec.codes)
	assert.True(t, closed)
	assert.Contains(t, out.String(), "outbox publisher shutting down gracefully")
}

func TestServeExitsOnFailure(t *testing.T) {
	p, rec, out := newTestProcess(t)

	p.Serve("worker", func(context.Context) error { return errors.New("subscription deleted") })

	assert.Equal(t, []int{1}, rec.codes)
	assert.Contains(t, out.String(), "failed to run worker")
	assert.NotContains(t, out.String(), "shutting down gracefully")
}
