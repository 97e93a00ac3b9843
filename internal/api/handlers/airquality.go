package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"airwatch/internal/core"
	"airwatch/internal/notifications"
	"airwatch/internal/types"
)

// Geocoder resolves a free-text address to a coordinate pair.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

// AirObserver returns the full station snapshot for a coordinate.
type AirObserver interface {
	Observe(ctx context.Context, lat, lon float64) (*types.AirObservation, error)
}

// AirQualityHandler serves the read-only /v1/air-quality lookup.
type AirQualityHandler struct {
	geocoder Geocoder
	observer AirObserver
}

// NewAirQualityHandler creates an AirQualityHandler.
func NewAirQualityHandler(geocoder Geocoder, observer AirObserver) *AirQualityHandler {
	return &AirQualityHandler{
		geocoder: geocoder,
		observer: observer,
	}
}

// Routes mounts the air-quality endpoint on the versioned router.
func (h *AirQualityHandler) Routes(r chi.Router) {
	r.Get("/air-quality", h.Lookup)
}

type airQualityResponse struct {
	Observation     *types.AirObservation `json:"observation"`
	Category        string                `json:"category"`
	Recommendations []string              `json:"recommendations"`
}

// Lookup returns the current air quality for either ?address= or
// ?lat=&lon=. Address takes precedence when both are supplied.
func (h *AirQualityHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := h.resolveCoordinates(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	obs, err := h.observer.Observe(r.Context(), lat, lon)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	index := notifications.CoerceIndex(obs.AQI)
	core.JSON(w, r, http.StatusOK, airQualityResponse{
		Observation:     obs,
		Category:        string(notifications.TierFor(index)),
		Recommendations: notifications.Recommendations(index),
	})
}

func (h *AirQualityHandler) resolveCoordinates(r *http.Request) (float64, float64, error) {
	q := r.URL.Query()

	if address := q.Get("address"); address != "" {
		return h.geocoder.Geocode(r.Context(), address)
	}

	rawLat, rawLon := q.Get("lat"), q.Get("lon")
	if rawLat == "" || rawLon == "" {
		return 0, 0, types.NewAppError(types.ErrCodeValidationInvalidParams,
			"either address or lat and lon query parameters are required", nil)
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, types.NewAppError(types.ErrCodeValidationInvalidLat,
			"lat must be a number between -90 and 90", err)
	}
	lon, err := strconv.ParseFloat(rawLon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, types.NewAppError(types.ErrCodeValidationInvalidLon,
			"lon must be a number between -180 and 180", err)
	}

	return lat, lon, nil
}
