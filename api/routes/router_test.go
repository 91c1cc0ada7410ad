package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vaporhaus/storefront-backend/api/controllers"
	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/internal/checkout"
	"github.com/vaporhaus/storefront-backend/internal/dashboard"
	"github.com/vaporhaus/storefront-backend/internal/identity"
	"github.com/vaporhaus/storefront-backend/internal/orders"
	pkgAuth "github.com/vaporhaus/storefront-backend/pkg/auth"
	"github.com/vaporhaus/storefront-backend/pkg/auth/session"
	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/db/models"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/pagination"
	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

const shippingJSON = `{"name":"Asha","email":"asha@example.com","phone":"9999999999","street":"1 Main St","city":"Pune","state":"MH","pincode":"411001"}`

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubCatalog struct {
	catalog.Service
}

func (stubCatalog) List(ctx context.Context, params catalog.ListParams) (pagination.Page[catalog.ProductDTO], error) {
	return pagination.Page[catalog.ProductDTO]{Items: []catalog.ProductDTO{}}, nil
}

func (stubCatalog) Lookup(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return nil, nil
}

type countingCheckout struct {
	calls atomic.Int32
}

func (c *countingCheckout) Submit(ctx context.Context, input checkout.Input) (*orders.OrderDTO, error) {
	c.calls.Add(1)
	return &orders.OrderDTO{ID: uuid.New(), Total: 4597, Status: enums.OrderStatusPending}, nil
}

type stubDashboard struct{}

func (stubDashboard) Totals(ctx context.Context) (*dashboard.Totals, error) {
	return &dashboard.Totals{Products: 3}, nil
}

func (stubDashboard) Revenue(ctx context.Context) (*dashboard.RevenueReport, error) {
	return &dashboard.RevenueReport{}, nil
}

type stubIdentity struct {
	identity.Service
}

func (stubIdentity) Login(ctx context.Context, req identity.LoginRequest) (*identity.Session, error) {
	return &identity.Session{AccessToken: "token"}, nil
}

type harness struct {
	router   http.Handler
	cfg      *config.Config
	checkout *countingCheckout
	registry *prometheus.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	cfg := testConfig()
	registry := prometheus.NewRegistry()
	checkoutSvc := &countingCheckout{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: "error", Output: io.Discard})

	router := NewRouter(Params{
		Config:   cfg,
		Logger:   logg,
		Redis:    redis.NewFromClient(raw),
		Sessions: stubSessions{},
		Health:   map[string]controllers.Pinger{"db": stubPinger{}},
		Metrics:  metrics.NewHTTPMetrics(registry),
		Gatherer: registry,
		Services: Services{
			Catalog:   stubCatalog{},
			Checkout:  checkoutSvc,
			Dashboard: stubDashboard{},
			Identity:  stubIdentity{},
		},
	})
	return &harness{router: router, cfg: cfg, checkout: checkoutSvc, registry: registry}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "storefront",
			ExpirationMinutes: 10,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 1,
			LoginIPLimit:    50,
		},
		Checkout: config.CheckoutConfig{IdempotencyTTL: time.Hour},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (h *harness) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t)
	if resp := h.do(http.MethodGet, "/health/live", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected live 200 got %d", resp.Code)
	}
	if resp := h.do(http.MethodGet, "/health/ready", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected ready 200 got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	h := newHarness(t)
	resp := h.do(http.MethodGet, "/api/v1/products?sort=newest", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp := h.do(http.MethodGet, "/api/v1/categories", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected categories 200 got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	h := newHarness(t)

	if resp := h.do(http.MethodGet, "/api/v1/admin/dashboard/totals", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	customer := map[string]string{"Authorization": "Bearer " + buildToken(t, h.cfg, enums.UserRoleCustomer)}
	if resp := h.do(http.MethodGet, "/api/v1/admin/dashboard/totals", "", customer); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := map[string]string{"Authorization": "Bearer " + buildToken(t, h.cfg, enums.UserRoleAdmin)}
	if resp := h.do(http.MethodGet, "/api/v1/admin/dashboard/totals", "", admin); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCheckoutReplaysIdempotentSubmit(t *testing.T) {
	h := newHarness(t)
	body := `{"cartId":"cart-1","shipping":` + shippingJSON + `}`
	headers := map[string]string{"Idempotency-Key": "submit-1"}

	first := h.do(http.MethodPost, "/api/v1/checkout", body, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", first.Code, first.Body.String())
	}
	second := h.do(http.MethodPost, "/api/v1/checkout", body, headers)
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatal("expected the stored response to be replayed")
	}
	if calls := h.checkout.calls.Load(); calls != 1 {
		t.Fatalf("expected one submit, got %d", calls)
	}

	if resp := h.do(http.MethodPost, "/api/v1/checkout", body, nil); resp.Code != http.StatusCreated {
		t.Fatalf("expected checkout without key to pass, got %d", resp.Code)
	}
	if calls := h.checkout.calls.Load(); calls != 2 {
		t.Fatalf("expected a second submit without a key, got %d", calls)
	}
}

func TestCheckoutRejectsInvalidToken(t *testing.T) {
	h := newHarness(t)
	body := `{"cartId":"cart-1","shipping":` + shippingJSON + `}`
	resp := h.do(http.MethodPost, "/api/v1/checkout", body, map[string]string{"Authorization": "Bearer garbage"})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if calls := h.checkout.calls.Load(); calls != 0 {
		t.Fatalf("expected no submit, got %d", calls)
	}
}

func TestLoginIsRateLimitedPerEmail(t *testing.T) {
	h := newHarness(t)
	body := `{"email":"shopper@example.com","password":"secret-password"}`

	if resp := h.do(http.MethodPost, "/api/v1/auth/login", body, nil); resp.Code != http.StatusOK {
		t.Fatalf("expected first login 200 got %d", resp.Code)
	}
	if resp := h.do(http.MethodPost, "/api/v1/auth/login", body, nil); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestMetricsEndpointExposesRouteMetrics(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodGet, "/api/v1/products", "", nil)

	resp := h.do(http.MethodGet, "/metrics", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	out := resp.Body.String()
	if !strings.Contains(out, "storefront_http_requests_total{") || !strings.Contains(out, `route="/api/v1/products`) {
		t.Fatalf("missing route metric in:\n%s", out)
	}
}
