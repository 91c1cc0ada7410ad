package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)

	blank, err := ParseCursor("  ")
	require.NoError(t, err)
	require.Nil(t, blank)

	_, err = ParseCursor("%%%")
	require.Error(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, MaxLimit, NormalizeLimit(1000))
	require.Equal(t, 7, NormalizeLimit(7))
	require.Equal(t, 8, LimitWithBuffer(7))
}

func TestBuildTrimsLookAhead(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	now := time.Now().UTC()
	rows := []row{{uuid.New(), now}, {uuid.New(), now.Add(-time.Minute)}, {uuid.New(), now.Add(-2 * time.Minute)}}
	key := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page := Build(rows, 2, key)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	require.Equal(t, rows[1].id, next.ID)

	last := Build(rows[:1], 2, key)
	require.Len(t, last.Items, 1)
	require.Empty(t, last.NextCursor)

	empty := Build[row](nil, 2, key)
	require.NotNil(t, empty.Items)
}

func TestOffsetHelpers(t *testing.T) {
	if got := Offset(0, 0); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
	if got := Offset(3, 10); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	page := NewOffsetPage[int](nil, 0, -1, 500)
	if page.Items == nil || page.Page != 1 || page.Limit != MaxLimit {
		t.Fatalf("unexpected page %+v", page)
	}
}
