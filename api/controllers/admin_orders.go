package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/api/middleware"
	"github.com/vaporhaus/storefront-backend/api/responses"
	"github.com/vaporhaus/storefront-backend/api/validators"
	"github.com/vaporhaus/storefront-backend/internal/orders"
	"github.com/vaporhaus/storefront-backend/pkg/enums"
	"github.com/vaporhaus/storefront-backend/pkg/logger"
	"github.com/vaporhaus/storefront-backend/pkg/outbox"
)

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminOrderList backs the orders table: status filter, free-text search, sort and paging.
func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := pageQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), orders.ListParams{
			Status: queryString(r, "status", 32),
			Search: queryString(r, "q", 120),
			Sort:   queryString(r, "sort", 32),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminOrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func AdminOrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input orders.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}

// AdminOrderStatus moves an order to a new status and records the acting admin on the event.
func AdminOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateStatus(r.Context(), id, payload.Status, actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func actorFromRequest(r *http.Request) *outbox.ActorRef {
	userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		return nil
	}
	role := middleware.RoleFromContext(r.Context())
	if role == "" {
		role = string(enums.UserRoleAdmin)
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}
