package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
)

// ContactStore is the slice of the store the contact endpoints need.
type ContactStore interface {
	CreateContact(ctx context.Context, c *model.Contact) error
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	ListContacts(ctx context.Context, p query.Params) (*query.Result[model.Contact], error)
	UpdateContactStatus(ctx context.Context, id, status string) error
	DeleteContact(ctx context.Context, id string) error
	UnreadContactCount(ctx context.Context) (int64, error)
	ContactStats(ctx context.Context) (*model.ContactStats, error)
}

// ContactHandler serves the contact message endpoints. Submission is
// public; everything else is gated.
type ContactHandler struct {
	store  ContactStore
	logger *slog.Logger
}

// NewContactHandler creates the contact endpoint handler.
func NewContactHandler(store ContactStore, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{store: store, logger: logger}
}

// Create handles POST /api/contacts, the public contact form.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c model.Contact
	if err := readJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string]string{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "Name is required"
	}
	switch {
	case strings.TrimSpace(c.Email) == "":
		errs["email"] = "Email is required"
	case !model.ValidEmail(strings.TrimSpace(c.Email)):
		errs["email"] = "Valid email is required"
	}
	if strings.TrimSpace(c.Message) == "" {
		errs["message"] = "Message is required"
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if err := h.store.CreateContact(r.Context(), &c); err != nil {
		writeStoreError(w, r, h.logger, err, "Contact not found")
		return
	}
	writeData(w, http.StatusCreated, "Message sent successfully", c)
}

// List handles GET /api/contacts with optional status filter and search.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	p := query.Parse(r.URL.Query(), query.Defaults{Limit: 20})
	if status := r.URL.Query().Get("status"); status != "" {
		p = p.WithFilter("status", status)
	}

	result, err := h.store.ListContacts(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Contact not found")
		return
	}
	writeData(w, http.StatusOK, "", result)
}

// Stats handles GET /api/contacts/stats.
func (h *ContactHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ContactStats(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Contact not found")
		return
	}
	writeData(w, http.StatusOK, "", stats)
}

// UnreadCount handles GET /api/contacts/unread-count, the dashboard badge.
func (h *ContactHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.UnreadContactCount(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Contact not found")
		return
	}
	writeData(w, http.StatusOK, "", map[string]int64{"count": count})
}

// Get handles GET /api/contacts/{id}. Opening an unread message marks it
// read; the transition is best effort and never fails the fetch.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.store.GetContact(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Contact not found")
		return
	}

	if c.Status == model.ContactStatusUnread {
		if err := h.store.UpdateContactStatus(r.Context(), id, model.ContactStatusRead); err == nil {
			c.Status = model.ContactStatusRead
		}
	}
	writeData(w, http.StatusOK, "", c)
}

// UpdateStatus handles PATCH /api/contacts/{id}/status.
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !model.ValidContactStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Status must be one of unread, read, replied, archived")
		return
	}

	if err := h.store.UpdateContactStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		writeStoreError(w, r, h.logger, err, "Contact not found")
		return
	}
	writeData(w, http.StatusOK, "Contact status updated successfully", nil)
}

// Delete handles DELETE /api/contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Contact not found")
		return
	}
	writeData(w, http.StatusOK, "Contact deleted successfully", nil)
}
