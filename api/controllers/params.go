package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vaporhaus/storefront-backend/api/validators"
	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

const (
	maxPage      = 100000
	maxPageLimit = 100
)

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func pathString(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, name+" is required").WithDetails(map[string]any{"field": name})
	}
	return raw, nil
}

// pageQuery reads page/limit. Zero means the service default.
func pageQuery(r *http.Request) (int, int, error) {
	page, err := validators.ParseQueryInt(r, "page", 0, 1, maxPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxPageLimit)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func queryString(r *http.Request, key string, maxLen int) string {
	return validators.SanitizeString(r.URL.Query().Get(key), maxLen)
}
