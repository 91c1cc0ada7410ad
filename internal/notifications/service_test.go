package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/pkg/db/dbtest"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
)

type fakeRepository struct {
	listFn        func(ctx context.Context, params listParams) ([]models.Notification, error)
	markReadFn    func(ctx context.Context, notificationID uuid.UUID, now time.Time) (bool, error)
	markAllReadFn func(ctx context.Context, now time.Time) (int64, error)
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listParams) ([]models.Notification, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, now time.Time) (bool, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, notificationID, now)
	}
	return false, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, now)
	}
	return 0, nil
}

func (f *fakeRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newServiceWithRepo(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestService_ListBuildsNextCursor(t *testing.T) {
	now := time.Now().UTC()
	first := models.Notification{ID: uuid.New(), CreatedAt: now}
	second := models.Notification{ID: uuid.New(), CreatedAt: now.Add(-time.Minute)}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listParams) ([]models.Notification, error) {
			if params.Limit != 1 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if !params.UnreadOnly {
				t.Fatal("expected unread filter to pass through")
			}
			return []models.Notification{first, second}, nil
		},
	}

	page, err := newServiceWithRepo(t, repo).List(context.Background(), ListParams{Limit: 1, UnreadOnly: true})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != first.ID {
		t.Fatalf("expected only the first notification, got %+v", page.Items)
	}
	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor == nil || cursor.ID != first.ID {
		t.Fatalf("expected cursor at the last returned row, got %+v", cursor)
	}
}

func TestService_ListRejectsBadCursor(t *testing.T) {
	_, err := newServiceWithRepo(t, &fakeRepository{}).List(context.Background(), ListParams{Cursor: "%%%"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_MarkRead(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		id     uuid.UUID
		found  bool
		err    error
		want   pkgerrors.Code
	}{
		{name: "missing id", id: uuid.Nil, want: pkgerrors.CodeValidation},
		{name: "not found", id: id, want: pkgerrors.CodeNotFound},
		{name: "repo failure", id: id, err: errors.New("boom"), want: pkgerrors.CodeDependency},
		{name: "found", id: id, found: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepository{
				markReadFn: func(ctx context.Context, notificationID uuid.UUID, now time.Time) (bool, error) {
					if notificationID != tc.id {
						t.Fatalf("unexpected id %s", notificationID)
					}
					return tc.found, tc.err
				},
			}
			err := newServiceWithRepo(t, repo).MarkRead(context.Background(), tc.id)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := pkgerrors.As(err); got == nil || got.Code() != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, now time.Time) (int64, error) {
			return 4, nil
		},
	}
	count, err := newServiceWithRepo(t, repo).MarkAllRead(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 updated, got %d", count)
	}
}

func TestNewService_RequiresRepository(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestRepository_PagesAndMarksRead(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]uuid.UUID, 0, 3)
	for i := 0; i < 3; i++ {
		n := &models.Notification{
			Type:      enums.NotificationTypeOrderAlert,
			Title:     "New order received",
			Message:   "msg",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, n.ID)
	}

	svc := newServiceWithRepo(t, repo)
	page, err := svc.List(ctx, ListParams{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != ids[2] || page.Items[1].ID != ids[1] {
		t.Fatalf("unexpected first page %+v", page.Items)
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	next, err := svc.List(ctx, ListParams{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list next: %v", err)
	}
	if len(next.Items) != 1 || next.Items[0].ID != ids[0] || next.NextCursor != "" {
		t.Fatalf("unexpected second page %+v", next)
	}

	if err := svc.MarkRead(ctx, ids[0]); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	var first models.Notification
	if err := conn.First(&first, "id = ?", ids[0]).Error; err != nil || first.ReadAt == nil {
		t.Fatalf("expected read_at set: %v", err)
	}
	if err := svc.MarkRead(ctx, ids[0]); err != nil {
		t.Fatalf("mark read twice: %v", err)
	}
	var again models.Notification
	if err := conn.First(&again, "id = ?", ids[0]).Error; err != nil || !again.ReadAt.Equal(*first.ReadAt) {
		t.Fatalf("second mark must keep the first read_at: %v", err)
	}
	if err := svc.MarkRead(ctx, uuid.New()); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
	unread, err := svc.List(ctx, ListParams{UnreadOnly: true})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread.Items) != 2 {
		t.Fatalf("expected 2 unread, got %d", len(unread.Items))
	}

	count, err := svc.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 marked, got %d", count)
	}

	removed, err := repo.DeleteReadBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("delete read: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
}
