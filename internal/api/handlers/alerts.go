package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"airwatch/internal/alerts"
	"airwatch/internal/core"
	"airwatch/internal/types"
)

// AlertStore is the persistence contract the alert handlers need.
type AlertStore interface {
	Insert(ctx context.Context, alert *types.AlertSubscription) error
	List(ctx context.Context) ([]types.AlertSubscription, error)
	Delete(ctx context.Context, alertID int64) (bool, error)
}

// AlertChecker runs one fetch-and-evaluate cycle for a subscription. Used
// for the immediate check after creation so a user standing in bad air is
// notified right away instead of waiting for the next sweep.
type AlertChecker interface {
	Check(ctx context.Context, alert types.AlertSubscription) alerts.Result
}

// AlertsHandler serves /v1/alerts.
type AlertsHandler struct {
	store    AlertStore
	checker  AlertChecker
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAlertsHandler creates an AlertsHandler.
func NewAlertsHandler(store AlertStore, checker AlertChecker, logger *slog.Logger) *AlertsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertsHandler{
		store:    store,
		checker:  checker,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Routes mounts the alert endpoints on the versioned router.
func (h *AlertsHandler) Routes(r chi.Router) {
	r.Post("/alerts", h.Create)
	r.Get("/alerts", h.ListAll)
	r.Delete("/alerts/{id}", h.Delete)
}

type createAlertRequest struct {
	UserID      int64   `json:"user_id" validate:"required,gt=0"`
	Location    string  `json:"location" validate:"required"`
	Lat         float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon         float64 `json:"lon" validate:"gte=-180,lte=180"`
	AQILimit    float64 `json:"aqi_limit" validate:"required,gt=0"`
	DeviceToken string  `json:"device_token" validate:"required"`
}

type createAlertResponse struct {
	Alert        types.AlertSubscription `json:"alert"`
	InitialCheck string                  `json:"initial_check"`
}

// Create registers a new subscription and runs an immediate check against
// the current reading. The check outcome is reported in the response but
// never fails the creation: the record is persisted first.
func (h *AlertsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.Error(w, r, mapValidationError(err))
		return
	}

	alert := types.AlertSubscription{
		UserID:      req.UserID,
		Location:    req.Location,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Threshold:   req.AQILimit,
		DeviceToken: req.DeviceToken,
	}

	if err := h.store.Insert(r.Context(), &alert); err != nil {
		core.Error(w, r, err)
		return
	}

	result := h.checker.Check(r.Context(), alert)
	h.logger.InfoContext(r.Context(), "alert created",
		"alert_id", alert.ID,
		"initial_check", string(result.Outcome),
		"index", result.Index,
	)

	core.JSON(w, r, http.StatusCreated, createAlertResponse{
		Alert:        alert,
		InitialCheck: string(result.Outcome),
	})
}

type listAlertsResponse struct {
	Alerts []types.AlertSubscription `json:"alerts"`
}

// ListAll returns every subscription, optionally filtered by ?user_id=.
func (h *AlertsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil || userID <= 0 {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidParams,
				"user_id must be a positive integer", perr))
			return
		}
		filtered := make([]types.AlertSubscription, 0, len(all))
		for _, a := range all {
			if a.UserID == userID {
				filtered = append(filtered, a)
			}
		}
		all = filtered
	}

	if all == nil {
		all = []types.AlertSubscription{}
	}
	core.JSON(w, r, http.StatusOK, listAlertsResponse{Alerts: all})
}

// Delete removes a subscription. Deleting an unknown ID is a 404.
func (h *AlertsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		core.Error(w, r, err)
		return
	}

	found, err := h.store.Delete(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if !found {
		core.Error(w, r, types.NewAppError(types.ErrCodeNotFoundAlert, "alert not found", nil))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
