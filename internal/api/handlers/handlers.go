// Package handlers implements the versioned HTTP API: alert subscriptions,
// users, saved locations, and the read-only air-quality lookups. Handlers
// depend on small consumer-side interfaces so tests can swap in fakes
// without touching the database or the upstream providers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"airwatch/internal/types"
)

// parseIDParam extracts a positive integer path parameter, returning a
// validation error for anything else.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidParams,
			"path parameter must be a positive integer", err,
			map[string]any{"param": name})
	}
	return id, nil
}

// mapValidationError converts validator failures into field-specific error
// codes so clients can distinguish a missing field from a bad coordinate.
func mapValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return types.NewAppError(types.ErrCodeValidationInvalidParams,
			"request validation failed", err)
	}

	first := verrs[0]
	details := map[string]any{
		"field":      first.Field(),
		"constraint": first.Tag(),
	}

	code := types.ErrCodeValidationInvalidParams
	switch {
	case first.Tag() == "required":
		code = types.ErrCodeValidationMissingField
	case strings.Contains(first.Field(), "Lat"):
		code = types.ErrCodeValidationInvalidLat
	case strings.Contains(first.Field(), "Lon"):
		code = types.ErrCodeValidationInvalidLon
	case strings.Contains(first.Field(), "Limit") || strings.Contains(first.Field(), "Threshold"):
		code = types.ErrCodeValidationThreshold
	}

	return types.NewAppErrorWithDetails(code, "request validation failed", err, details)
}
