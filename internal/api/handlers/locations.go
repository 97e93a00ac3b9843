package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"airwatch/internal/core"
	"airwatch/internal/notifications"
	"airwatch/internal/types"
)

// DefaultLocationAQILimit is applied when a saved location is created
// without an explicit limit.
const DefaultLocationAQILimit = 150

// LocationStore is the persistence contract the location handlers need.
type LocationStore interface {
	Create(ctx context.Context, loc *types.SavedLocation) error
	ListByUser(ctx context.Context, userID int64) ([]types.SavedLocation, error)
	GetByID(ctx context.Context, id int64) (*types.SavedLocation, error)
}

// LocationsHandler serves /v1/locations.
type LocationsHandler struct {
	store    LocationStore
	users    UserStore
	geocoder Geocoder
	observer AirObserver
	validate *validator.Validate
}

// NewLocationsHandler creates a LocationsHandler.
func NewLocationsHandler(store LocationStore, users UserStore, geocoder Geocoder, observer AirObserver) *LocationsHandler {
	return &LocationsHandler{
		store:    store,
		users:    users,
		geocoder: geocoder,
		observer: observer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes mounts the location endpoints on the versioned router.
func (h *LocationsHandler) Routes(r chi.Router) {
	r.Post("/locations", h.Create)
	r.Get("/locations", h.ListByUser)
	r.Get("/locations/{id}/aqi", h.AirQuality)
}

type createLocationRequest struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address"`
	// Lat and Lon are pointers so "absent" is distinguishable from the
	// equator; when absent the address is geocoded instead.
	Lat      *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon      *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	AQILimit int      `json:"aqi_limit" validate:"omitempty,gt=0"`
}

// Create stores a named coordinate for a user. Coordinates may be supplied
// directly or resolved from the address; the user must already exist.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.Error(w, r, mapValidationError(err))
		return
	}

	if _, err := h.users.GetByID(r.Context(), req.UserID); err != nil {
		core.Error(w, r, err)
		return
	}

	var lat, lon float64
	switch {
	case req.Lat != nil && req.Lon != nil:
		lat, lon = *req.Lat, *req.Lon
	case req.Address != "":
		var err error
		lat, lon, err = h.geocoder.Geocode(r.Context(), req.Address)
		if err != nil {
			core.Error(w, r, err)
			return
		}
	default:
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationMissingField,
			"either lat and lon or address is required", nil))
		return
	}

	limit := req.AQILimit
	if limit <= 0 {
		limit = DefaultLocationAQILimit
	}

	loc := types.SavedLocation{
		UserID:   req.UserID,
		Name:     req.Name,
		Lat:      lat,
		Lon:      lon,
		AQILimit: limit,
	}
	if err := h.store.Create(r.Context(), &loc); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, loc)
}

type listLocationsResponse struct {
	Locations []types.SavedLocation `json:"locations"`
}

// ListByUser returns the saved locations for ?user_id=.
func (h *LocationsHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidParams,
			"user_id query parameter must be a positive integer", err))
		return
	}

	locations, err := h.store.ListByUser(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if locations == nil {
		locations = []types.SavedLocation{}
	}

	core.JSON(w, r, http.StatusOK, listLocationsResponse{Locations: locations})
}

type locationAirQualityResponse struct {
	Location        types.SavedLocation   `json:"location"`
	Observation     *types.AirObservation `json:"observation"`
	Category        string                `json:"category"`
	Recommendations []string              `json:"recommendations"`
	ExceedsLimit    bool                  `json:"exceeds_limit"`
}

// AirQuality returns the current reading for a saved location together with
// the advisory texts and whether the location's own limit is exceeded.
func (h *LocationsHandler) AirQuality(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		core.Error(w, r, err)
		return
	}

	loc, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	obs, err := h.observer.Observe(r.Context(), loc.Lat, loc.Lon)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	index := notifications.CoerceIndex(obs.AQI)
	core.JSON(w, r, http.StatusOK, locationAirQualityResponse{
		Location:        *loc,
		Observation:     obs,
		Category:        string(notifications.TierFor(index)),
		Recommendations: notifications.Recommendations(index),
		ExceedsLimit:    obs.AQI != nil && *obs.AQI > loc.AQILimit,
	})
}
