package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/vaporhaus/storefront-backend/pkg/errors"
)

func queryValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func queryError(key, message string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

// ParseQueryInt reads an integer in [min, max], returning defaultVal when key is absent.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	v, err := ParseOptionalQueryInt(r, key, min, max)
	if err != nil || v == nil {
		return defaultVal, err
	}
	return *v, nil
}

// ParseOptionalQueryInt returns nil when key is absent.
func ParseOptionalQueryInt(r *http.Request, key string, min, max int) (*int, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, queryError(key, "query parameter must be numeric", nil)
	}
	if value < min || value > max {
		return nil, queryError(key, "query parameter out of range", map[string]any{"min": min, "max": max})
	}
	return &value, nil
}

// ParseQueryBool returns nil when key is absent.
func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	raw := queryValue(r, key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, queryError(key, "query parameter must be a boolean", nil)
	}
	return &value, nil
}
