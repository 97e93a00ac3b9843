package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"airwatch/internal/core"
	"airwatch/internal/types"
)

// UserStore is the persistence contract the user handlers need.
type UserStore interface {
	Create(ctx context.Context, user *types.User) error
	GetByID(ctx context.Context, id int64) (*types.User, error)
}

// UsersHandler serves /v1/users.
type UsersHandler struct {
	store    UserStore
	validate *validator.Validate
}

// NewUsersHandler creates a UsersHandler.
func NewUsersHandler(store UserStore) *UsersHandler {
	return &UsersHandler{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes mounts the user endpoints on the versioned router.
func (h *UsersHandler) Routes(r chi.Router) {
	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.Get)
}

type createUserRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	DeviceToken string `json:"device_token" validate:"required"`
}

// Create registers a device owner.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		core.Error(w, r, mapValidationError(err))
		return
	}

	user := types.User{
		Name:        req.Name,
		DeviceToken: req.DeviceToken,
	}
	if err := h.store.Create(r.Context(), &user); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusCreated, user)
}

// Get fetches one user by ID.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		core.Error(w, r, err)
		return
	}

	user, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, user)
}
