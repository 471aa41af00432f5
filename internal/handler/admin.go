// Package handler implements the HTTP endpoints: request decoding,
// validation, store calls, and the standard response envelope.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/server/middleware"
	"github.com/powershield/shield/internal/service"
	"github.com/powershield/shield/internal/store"
)

// AdminStore is the slice of the store the admin endpoints need.
type AdminStore interface {
	CreateAdmin(ctx context.Context, admin *model.AdminUser) error
	GetAdminByID(ctx context.Context, id string) (*model.AdminUser, error)
	ListAdmins(ctx context.Context, filter bson.M) ([]model.AdminUser, error)
	UpdateAdmin(ctx context.Context, id string, patch bson.M) (*model.AdminUser, error)
	UpdateAdminStatus(ctx context.Context, id string, active bool) (*model.AdminUser, error)
	DeleteAdmin(ctx context.Context, id string) error
}

// LoginService runs the credential check and issues a token.
type LoginService interface {
	Login(ctx context.Context, usernameOrEmail, password string) (*model.AdminUser, string, error)
}

// AdminHandler serves the admin account endpoints, including login.
type AdminHandler struct {
	store  AdminStore
	auth   LoginService
	logger *slog.Logger
}

// NewAdminHandler creates the admin endpoint handler.
func NewAdminHandler(store AdminStore, auth LoginService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: store, auth: auth, logger: logger}
}

// Login handles POST /api/admin/login. The username field also accepts an
// email address. Every failure mode responds with the same 401 so accounts
// cannot be enumerated.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	admin, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeData(w, http.StatusOK, "Login successful", model.LoginData{User: *admin, Token: token})
}

// Me handles GET /api/admin/me, returning the authenticated account.
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())
	if admin == nil {
		writeError(w, http.StatusUnauthorized, "Access denied. Invalid token.")
		return
	}
	writeData(w, http.StatusOK, "", admin)
}

// Create handles POST /api/admin. Restricted to super admins by the route
// table. The plaintext password is hashed here and never reaches the store.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string     `json:"username"`
		Email    string     `json:"email"`
		Password string     `json:"password"`
		Role     model.Role `json:"role"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := model.ValidateAdmin(req.Username, req.Email, req.Password, req.Role); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	hash, err := service.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	admin := &model.AdminUser{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hash,
		Role:           req.Role,
		IsActive:       true,
	}
	if err := h.store.CreateAdmin(r.Context(), admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Username or email already exists")
			return
		}
		writeStoreError(w, r, h.logger, err, "Admin not found")
		return
	}

	writeData(w, http.StatusCreated, "Admin created successfully", admin.Sanitized())
}

// List handles GET /api/admin with optional role and isActive filters.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if role := r.URL.Query().Get("role"); role != "" {
		filter["role"] = role
	}
	switch r.URL.Query().Get("isActive") {
	case "true":
		filter["isActive"] = true
	case "false":
		filter["isActive"] = false
	}

	admins, err := h.store.ListAdmins(r.Context(), filter)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "", admins)
}

// Get handles GET /api/admin/{id}.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	admin, err := h.store.GetAdminByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "", admin)
}

// Update handles PUT /api/admin/{id}. Only the provided fields change; a
// new password is hashed before it is stored.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string     `json:"username"`
		Email    *string     `json:"email"`
		Password *string     `json:"password"`
		Role     *model.Role `json:"role"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string]string{}
	patch := bson.M{}
	if req.Username != nil {
		if len(*req.Username) < 3 {
			errs["username"] = "Username must be at least 3 characters long"
		}
		patch["username"] = *req.Username
	}
	if req.Email != nil {
		if !model.ValidEmail(*req.Email) {
			errs["email"] = "Valid email is required"
		}
		patch["email"] = *req.Email
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			errs["password"] = "Password must be at least 6 characters long"
		} else {
			hash, err := service.HashPassword(*req.Password)
			if err != nil {
				h.logger.Error("password hashing failed", "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			patch["hashedPassword"] = hash
		}
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			errs["role"] = "Role must be either admin or super_admin"
		}
		patch["role"] = *req.Role
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	admin, err := h.store.UpdateAdmin(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "Username or email already exists")
			return
		}
		writeStoreError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "Admin updated successfully", admin)
}

// UpdateStatus handles PATCH /api/admin/{id}/status. Restricted to super
// admins; an account cannot deactivate itself.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if claims := middleware.GetClaims(r.Context()); claims != nil && claims.ID == id {
		writeError(w, http.StatusBadRequest, "You cannot change your own status")
		return
	}

	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := readJSON(r, &req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "isActive is required")
		return
	}

	admin, err := h.store.UpdateAdminStatus(r.Context(), id, *req.IsActive)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "Admin status updated successfully", admin)
}

// Delete handles DELETE /api/admin/{id}. Restricted to super admins; an
// account cannot delete itself.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if claims := middleware.GetClaims(r.Context()); claims != nil && claims.ID == id {
		writeError(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	if err := h.store.DeleteAdmin(r.Context(), id); err != nil {
		writeStoreError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "Admin deleted successfully", nil)
}
