package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
	"github.com/powershield/shield/internal/store"
)

// UserStore is the slice of the store the user endpoints need.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, p query.Params) (*query.Result[model.User], error)
	UpdateUser(ctx context.Context, id string, patch bson.M) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int64, error)
}

// UserHandler serves the visitor record endpoints. Registration is
// public; management is gated.
type UserHandler struct {
	store  UserStore
	logger *slog.Logger
}

// NewUserHandler creates the user endpoint handler.
func NewUserHandler(store UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: store, logger: logger}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := readJSON(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string]string{}
	if strings.TrimSpace(u.Name) == "" {
		errs["name"] = "Name is required"
	}
	switch {
	case strings.TrimSpace(u.Email) == "":
		errs["email"] = "Email is required"
	case !model.ValidEmail(strings.TrimSpace(u.Email)):
		errs["email"] = "Valid email is required"
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if err := h.store.CreateUser(r.Context(), &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		writeStoreError(w, r, h.logger, err, "User not found")
		return
	}
	writeData(w, http.StatusCreated, "User created successfully", u)
}

// CheckEmail handles GET /api/users/check-email. Used by the signup form
// to report whether an email is already registered; only the boolean
// leaks, never the record.
func (h *UserHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if !model.ValidEmail(email) {
		writeError(w, http.StatusBadRequest, "Valid email is required")
		return
	}

	_, err := h.store.GetUserByEmail(r.Context(), email)
	switch {
	case err == nil:
		writeData(w, http.StatusOK, "", map[string]bool{"exists": true})
	case errors.Is(err, store.ErrNotFound):
		writeData(w, http.StatusOK, "", map[string]bool{"exists": false})
	default:
		writeStoreError(w, r, h.logger, err, "User not found")
	}
}

// Stats handles GET /api/users/stats.
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.CountUsers(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "User not found")
		return
	}
	writeData(w, http.StatusOK, "", map[string]int64{"total": total})
}

// List handles GET /api/users with search.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p := query.Parse(r.URL.Query(), query.Defaults{Limit: 20})

	result, err := h.store.ListUsers(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "User not found")
		return
	}
	writeData(w, http.StatusOK, "", result)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "User not found")
		return
	}
	writeData(w, http.StatusOK, "", u)
}

// Update handles PUT /api/users/{id}. Only the provided fields change.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Company *string `json:"company"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string]string{}
	patch := bson.M{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errs["name"] = "Name is required"
		}
		patch["name"] = *req.Name
	}
	if req.Email != nil {
		if !model.ValidEmail(*req.Email) {
			errs["email"] = "Valid email is required"
		}
		patch["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		patch["phone"] = *req.Phone
	}
	if req.Company != nil {
		patch["company"] = *req.Company
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	u, err := h.store.UpdateUser(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		writeStoreError(w, r, h.logger, err, "User not found")
		return
	}
	writeData(w, http.StatusOK, "User updated successfully", u)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "User not found")
		return
	}
	writeData(w, http.StatusOK, "User deleted successfully", nil)
}
