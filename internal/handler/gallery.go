package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
)

// GalleryStore is the slice of the store the gallery endpoints need.
type GalleryStore interface {
	CreateGalleryItem(ctx context.Context, item *model.GalleryItem) error
	GetGalleryItem(ctx context.Context, id string) (*model.GalleryItem, error)
	ListGallery(ctx context.Context, p query.Params) (*query.Result[model.GalleryItem], error)
	FeaturedGallery(ctx context.Context, limit int64) ([]model.GalleryItem, error)
	UpdateGalleryItem(ctx context.Context, id string, patch bson.M) (*model.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id string) error
	IncrementGalleryViews(ctx context.Context, id string) error
	ToggleGalleryLike(ctx context.Context, id string, increment bool) error
	GalleryCategories(ctx context.Context) ([]string, error)
	GalleryStats(ctx context.Context) (*model.GalleryStats, error)
}

// GalleryHandler serves the portfolio gallery endpoints.
type GalleryHandler struct {
	store  GalleryStore
	logger *slog.Logger
}

// NewGalleryHandler creates the gallery endpoint handler.
func NewGalleryHandler(store GalleryStore, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{store: store, logger: logger}
}

// List handles GET /api/gallery, the public listing. Only active entries
// are visible; category, featured, and search narrow the result.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	p := query.Parse(r.URL.Query(), query.Defaults{Limit: 12}).
		WithFilter("status", model.GalleryStatusActive)
	if category := r.URL.Query().Get("category"); category != "" {
		p = p.WithFilter("category", category)
	}
	if r.URL.Query().Get("featured") == "true" {
		p = p.WithFilter("featured", true)
	}

	result, err := h.store.ListGallery(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "", result)
}

// ListAll handles GET /api/gallery/admin/all, the gated listing that also
// shows inactive entries and accepts a status filter.
func (h *GalleryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	p := query.Parse(r.URL.Query(), query.Defaults{Limit: 20})
	if status := r.URL.Query().Get("status"); status != "" {
		p = p.WithFilter("status", status)
	}
	if category := r.URL.Query().Get("category"); category != "" {
		p = p.WithFilter("category", category)
	}

	result, err := h.store.ListGallery(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "", result)
}

// Featured handles GET /api/gallery/featured.
func (h *GalleryHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit := int64(queryInt(r.URL.Query(), "limit", 6))
	if limit < 1 || limit > query.MaxLimit {
		limit = 6
	}

	items, err := h.store.FeaturedGallery(r.Context(), limit)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "", items)
}

// Categories handles GET /api/gallery/categories.
func (h *GalleryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.GalleryCategories(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "", categories)
}

// Stats handles GET /api/gallery/admin/stats.
func (h *GalleryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GalleryStats(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "", stats)
}

// Get handles GET /api/gallery/{id}. Each fetch counts as a view; the
// counter bump is best effort and never fails the read.
func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := h.store.GetGalleryItem(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}

	if err := h.store.IncrementGalleryViews(r.Context(), id); err == nil {
		item.Views++
	}
	writeData(w, http.StatusOK, "", item)
}

// Create handles POST /api/gallery.
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var item model.GalleryItem
	if err := readJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string]string{}
	if strings.TrimSpace(item.Title) == "" {
		errs["title"] = "Title is required"
	}
	if item.Status != "" && item.Status != model.GalleryStatusActive && item.Status != model.GalleryStatusInactive {
		errs["status"] = "Status must be either active or inactive"
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if err := h.store.CreateGalleryItem(r.Context(), &item); err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusCreated, "Gallery item created successfully", item)
}

// Update handles PUT /api/gallery/{id}. Only the provided fields change.
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		ImageURL    *string `json:"imageUrl"`
		Status      *string `json:"status"`
		Featured    *bool   `json:"featured"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string]string{}
	patch := bson.M{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			errs["title"] = "Title is required"
		}
		patch["title"] = *req.Title
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Category != nil {
		patch["category"] = *req.Category
	}
	if req.ImageURL != nil {
		patch["imageUrl"] = *req.ImageURL
	}
	if req.Status != nil {
		if *req.Status != model.GalleryStatusActive && *req.Status != model.GalleryStatusInactive {
			errs["status"] = "Status must be either active or inactive"
		}
		patch["status"] = *req.Status
	}
	if req.Featured != nil {
		patch["featured"] = *req.Featured
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	item, err := h.store.UpdateGalleryItem(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "Gallery item updated successfully", item)
}

// Like handles POST /api/gallery/{id}/like. The action field selects
// between like and unlike; anything else is rejected.
func (h *GalleryHandler) Like(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Action != "like" && req.Action != "unlike" {
		writeError(w, http.StatusBadRequest, "Action must be either like or unlike")
		return
	}

	if err := h.store.ToggleGalleryLike(r.Context(), chi.URLParam(r, "id"), req.Action == "like"); err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "Gallery item "+req.Action+"d successfully", nil)
}

// Delete handles DELETE /api/gallery/{id}.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteGalleryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Gallery item not found")
		return
	}
	writeData(w, http.StatusOK, "Gallery item deleted successfully", nil)
}
