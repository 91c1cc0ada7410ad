package main

import (
	"fmt"

	"github.com/vaporhaus/storefront-backend/api/routes"
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
	"github.com/vaporhaus/storefront-backend/pkg/db"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/metrics"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
	"github.com/vaporhaus/storefront-backend/pkg/redis"
	"github.com/vaporhaus/storefront-backend/pkg/storage/gcs"
)

type deps struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	redis    *redis.Client
	sessions *session.Manager
	gcs      *gcs.Client
	commerce *metrics.CommerceMetrics
}

// buildServices constructs every domain service the router serves. gcs may be nil.
func buildServices(d deps) (routes.Services, error) {
	var svc routes.Services
	conn := d.db.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), d.logg)
	productRepo := catalog.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)

	var err error
	if svc.Catalog, err = catalog.NewService(productRepo, d.db); err != nil {
		return svc, fmt.Errorf("catalog: %w", err)
	}

	cartStore, err := cart.NewStore(d.redis, d.cfg.Cart.TTL)
	if err != nil {
		return svc, fmt.Errorf("cart store: %w", err)
	}
	if svc.Cart, err = cart.NewService(cartStore, svc.Catalog, d.commerce, d.logg); err != nil {
		return svc, fmt.Errorf("cart: %w", err)
	}

	orderRepo := orders.NewRepository(conn)
	if svc.Checkout, err = checkout.NewService(d.db, cartStore, orderRepo, emitter, d.commerce, d.logg); err != nil {
		return svc, fmt.Errorf("checkout: %w", err)
	}
	if svc.Orders, err = orders.NewService(orderRepo, d.db, emitter, svc.Catalog, d.logg); err != nil {
		return svc, fmt.Errorf("orders: %w", err)
	}

	if svc.Identity, err = identity.NewService(identity.ServiceParams{
		Users:          identity.NewUserRepository(conn),
		Customers:      customerRepo,
		Tx:             d.db,
		Sessions:       d.sessions,
		JWTConfig:      d.cfg.JWT,
		PasswordConfig: d.cfg.Password,
		Logger:         d.logg,
	}); err != nil {
		return svc, fmt.Errorf("identity: %w", err)
	}

	if svc.Customers, err = customers.NewService(customerRepo); err != nil {
		return svc, fmt.Errorf("customers: %w", err)
	}
	if svc.Banners, err = banners.NewService(conn); err != nil {
		return svc, fmt.Errorf("banners: %w", err)
	}
	if svc.Testimonials, err = testimonials.NewService(conn); err != nil {
		return svc, fmt.Errorf("testimonials: %w", err)
	}
	if svc.Reviews, err = reviews.NewService(conn); err != nil {
		return svc, fmt.Errorf("reviews: %w", err)
	}
	if svc.Dashboard, err = dashboard.NewService(conn); err != nil {
		return svc, fmt.Errorf("dashboard: %w", err)
	}
	if svc.Importer, err = importer.NewService(productRepo, d.db, emitter, d.commerce, d.logg, d.cfg.Import.MaxRows); err != nil {
		return svc, fmt.Errorf("importer: %w", err)
	}
	if svc.Notifications, err = notifications.NewService(notifications.NewRepository(conn)); err != nil {
		return svc, fmt.Errorf("notifications: %w", err)
	}

	if d.gcs != nil {
		if svc.Media, err = media.NewService(d.gcs, d.gcs.DefaultBucket(), d.cfg.GCS.UploadURLExpiry, d.cfg.Media.MaxUploadMB); err != nil {
			return svc, fmt.Errorf("media: %w", err)
		}
	}

	return svc, nil
}
