package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vaporhaus/storefront-backend/api/controllers"
	"github.com/vaporhaus/storefront-backend/api/middleware"
	"github.com/vaporhaus/storefront-backend/internal/banners"
	"github.com/vaporhaus/storefront-backend/internal/cart"
	"github.com/vaporhaus/storefront-backend/internal/catalog"
	"github.com/vaporhaus/storefront-backend/internal/checkout"
	"github.com/vaporhaus/storefront-backend/internal/customers"
	"github.com/vaporhaus/storefront-backend/internal/dashboard"
	"github.com/vaporhaus/storefront-backend/internal/identity"
	"github.com/vaporhaus/storefront-backend/internal/importer"
	"github.com/vaporhaus/storefront-backend/internal/media"
	"github.com/vaporhaus/storefront-backend/internal/notifications"
	"github.com/vaporhaus/storefront-backend/internal/orders"
	"github.com/vaporhaus/storefront-backend/internal/reviews"
	"github.com/vaporhaus/storefront-backend/internal/testimonials"
	"github.com/vaporhaus/storefront-backend/pkg/auth/session"
	"github.com/vaporhaus/storefront-backend/pkg/config"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/redis"
)

// Services are the domain services behind the HTTP surface. Media may be nil when no bucket
// is configured.
type Services struct {
	Catalog       catalog.Service
	Cart          cart.Service
	Checkout      checkout.Service
	Identity      identity.Service
	Orders        orders.Service
	Customers     customers.Service
	Banners       banners.Service
	Testimonials  testimonials.Service
	Reviews       reviews.Service
	Importer      importer.Service
	Dashboard     dashboard.Service
	Media         media.Service
	Notifications notifications.Service
}

// Params bundles everything NewRouter wires.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	Sessions session.Checker
	Health   map[string]controllers.Pinger
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
	Services Services
}

func NewRouter(p Params) http.Handler {
	cfg, logg, svc := p.Config, p.Logger, p.Services
	gatherer := p.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		chimw.RealIP,
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	writePolicy := middleware.IdempotencyPolicy{TTL: cfg.Checkout.IdempotencyTTL}

	requireAuth := middleware.Auth(cfg.JWT, p.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Health, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svc.Catalog, logg))
			r.Get("/brands", controllers.ListBrands(svc.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(svc.Catalog, logg))
			r.With(requireAuth).Post("/{productID}/reviews", controllers.ProductReviewCreate(svc.Reviews, svc.Identity, logg))
		})
		r.Get("/categories", controllers.ListCategories())
		r.Get("/banners", controllers.ListActiveBanners(svc.Banners, logg))
		r.Get("/testimonials", controllers.ListTestimonials(svc.Testimonials, logg))

		r.Route("/carts", func(r chi.Router) {
			r.Post("/", controllers.CartCreate(svc.Cart, logg))
			r.Get("/{cartID}", controllers.CartGet(svc.Cart, logg))
			r.Delete("/{cartID}", controllers.CartClear(svc.Cart, logg))
			r.Post("/{cartID}/items", controllers.CartAddItem(svc.Cart, logg))
			r.Patch("/{cartID}/items/{lineID}", controllers.CartUpdateItem(svc.Cart, logg))
			r.Delete("/{cartID}/items/{lineID}", controllers.CartRemoveItem(svc.Cart, logg))
		})

		r.With(optionalAuth, middleware.Idempotency(p.Redis, writePolicy, logg)).
			Post("/checkout", controllers.Checkout(svc.Checkout, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(svc.Identity, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(svc.Identity, logg))
			r.Post("/refresh", controllers.AuthRefresh(svc.Identity, logg))
			r.With(requireAuth).Post("/logout", controllers.AuthLogout(svc.Identity, logg))
			r.With(requireAuth).Get("/me", controllers.AuthMe(svc.Identity, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			mountAdmin(r, cfg, svc, middleware.Idempotency(p.Redis, writePolicy, logg), logg)
		})
	})

	return r
}

func mountAdmin(r chi.Router, cfg *config.Config, svc Services, idempotent func(http.Handler) http.Handler, logg *logger.Logger) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(svc.Catalog, logg))
		r.Post("/", controllers.AdminProductCreate(svc.Catalog, logg))
		r.Post("/import", controllers.AdminProductImport(svc.Importer, cfg.Import.MaxUploadMB, logg))
		r.Get("/import/template", controllers.AdminImportTemplate(svc.Importer, logg))
		r.Get("/{productID}", controllers.GetProduct(svc.Catalog, logg))
		r.Put("/{productID}", controllers.AdminProductUpdate(svc.Catalog, logg))
		r.Delete("/{productID}", controllers.AdminProductDelete(svc.Catalog, logg))
		r.Post("/{productID}/reviews", controllers.AdminReviewCreate(svc.Reviews, logg))
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", controllers.AdminOrderList(svc.Orders, logg))
		r.With(idempotent).Post("/", controllers.AdminOrderCreate(svc.Orders, logg))
		r.Get("/{orderID}", controllers.AdminOrderGet(svc.Orders, logg))
		r.Patch("/{orderID}/status", controllers.AdminOrderStatus(svc.Orders, logg))
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", controllers.AdminCustomerList(svc.Customers, logg))
		r.Post("/", controllers.AdminCustomerCreate(svc.Customers, logg))
		r.Get("/{customerID}", controllers.AdminCustomerGet(svc.Customers, logg))
		r.Put("/{customerID}", controllers.AdminCustomerUpdate(svc.Customers, logg))
		r.Delete("/{customerID}", controllers.AdminCustomerDelete(svc.Customers, logg))
	})

	r.Route("/banners", func(r chi.Router) {
		r.Get("/", controllers.AdminBannerList(svc.Banners, logg))
		r.Post("/", controllers.AdminBannerCreate(svc.Banners, logg))
		r.Get("/{bannerID}", controllers.AdminBannerGet(svc.Banners, logg))
		r.Put("/{bannerID}", controllers.AdminBannerUpdate(svc.Banners, logg))
		r.Delete("/{bannerID}", controllers.AdminBannerDelete(svc.Banners, logg))
	})

	r.Route("/testimonials", func(r chi.Router) {
		r.Get("/", controllers.ListTestimonials(svc.Testimonials, logg))
		r.Post("/", controllers.AdminTestimonialCreate(svc.Testimonials, logg))
		r.Put("/{testimonialID}", controllers.AdminTestimonialUpdate(svc.Testimonials, logg))
		r.Delete("/{testimonialID}", controllers.AdminTestimonialDelete(svc.Testimonials, logg))
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", controllers.AdminReviewList(svc.Reviews, logg))
		r.Put("/{reviewID}", controllers.AdminReviewUpdate(svc.Reviews, logg))
		r.Delete("/{reviewID}", controllers.AdminReviewDelete(svc.Reviews, logg))
	})

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/totals", controllers.DashboardTotals(svc.Dashboard, logg))
		r.Get("/revenue", controllers.DashboardRevenue(svc.Dashboard, logg))
	})

	r.Post("/media/presign", controllers.MediaPresign(svc.Media, logg))
	r.Delete("/media", controllers.MediaDiscard(svc.Media, logg))

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
		r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
		r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
	})
}
