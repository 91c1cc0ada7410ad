package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/api/middleware"
	"github.com/vaporhaus/storefront-backend/api/responses"
	"github.com/vaporhaus/storefront-backend/api/validators"
	"github.com/vaporhaus/storefront-backend/internal/checkout"
	"github.com/vaporhaus/storefront-backend/internal/orders"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	CartID   string              `json:"cartId" validate:"required,max=64"`
	Shipping orders.ShippingForm `json:"shipping"`
}

// Checkout places a pending order from a cart. Signed-in shoppers get the order linked to their
// account; everyone else checks out as a guest.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCartID(r.Context(), payload.CartID)

		input := checkout.Input{
			CartID:   payload.CartID,
			Shipping: payload.Shipping,
		}
		if raw := middleware.UserIDFromContext(ctx); raw != "" {
			if userID, err := uuid.Parse(raw); err == nil {
				input.Identity = &checkout.Identity{UserID: userID, Role: enums.UserRole(middleware.RoleFromContext(ctx))}
			}
		}

		order, err := svc.Submit(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}
