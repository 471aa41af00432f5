package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
	"github.com/powershield/shield/internal/store"
)

// ApplicationStore is the slice of the store the application endpoints
// need. GetJob is included so submissions can be checked against a live
// posting.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *model.JobApplication) error
	GetApplication(ctx context.Context, id string) (*model.ApplicationWithJob, error)
	ListApplications(ctx context.Context, p query.Params) (*query.Result[model.ApplicationWithJob], error)
	ApplicationExists(ctx context.Context, email, jobID string) (bool, error)
	UpdateApplication(ctx context.Context, id string, patch bson.M) (*model.ApplicationWithJob, error)
	UpdateApplicationStatus(ctx context.Context, id, status string) (*model.ApplicationWithJob, error)
	DeleteApplication(ctx context.Context, id string) error
	ApplicationStats(ctx context.Context, jobID string) (*model.ApplicationStats, error)
	ApplicationsGroupedByJob(ctx context.Context) ([]model.JobApplicationGroup, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
}

// ApplicationHandler serves the job application endpoints. Submission is
// public; review is gated.
type ApplicationHandler struct {
	store  ApplicationStore
	logger *slog.Logger
}

// NewApplicationHandler creates the application endpoint handler.
func NewApplicationHandler(store ApplicationStore, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{store: store, logger: logger}
}

// Create handles POST /api/job-applications, the public submission form.
// The posting must exist and be active, and an email can apply to a
// posting only once.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var app model.JobApplication
	if err := readJSON(r, &app); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := model.ValidateApplication(app.JobID, app.FirstName, app.LastName, app.Email); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	job, err := h.store.GetJob(r.Context(), app.JobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	if job.Status != model.JobStatusActive {
		writeError(w, http.StatusBadRequest, "This position is no longer accepting applications")
		return
	}

	exists, err := h.store.ApplicationExists(r.Context(), app.Email, app.JobID)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "You have already applied for this position")
		return
	}

	if app.Position == "" {
		app.Position = job.Title
	}
	if err := h.store.CreateApplication(r.Context(), &app); err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusCreated, "Application submitted successfully", app)
}

// List handles GET /api/job-applications with optional status and jobId
// filters plus search.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	p := query.Parse(r.URL.Query(), query.Defaults{Limit: 20})
	if status := r.URL.Query().Get("status"); status != "" {
		p = p.WithFilter("status", status)
	}
	if jobID := r.URL.Query().Get("jobId"); jobID != "" {
		p = p.WithFilter("jobId", jobID)
	}

	result, err := h.store.ListApplications(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusOK, "", result)
}

// Stats handles GET /api/job-applications/stats, optionally scoped to one
// posting via the jobId parameter.
func (h *ApplicationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.ApplicationStats(r.Context(), r.URL.Query().Get("jobId"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusOK, "", stats)
}

// Grouped handles GET /api/job-applications/grouped, the per-posting
// rollup for the review board.
func (h *ApplicationHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ApplicationsGroupedByJob(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusOK, "", groups)
}

// Get handles GET /api/job-applications/{id}.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.store.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusOK, "", app)
}

// Update handles PUT /api/job-applications/{id}. Only the provided fields
// change; status moves through UpdateStatus so reviewedAt stays correct.
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName   *string `json:"firstName"`
		LastName    *string `json:"lastName"`
		Phone       *string `json:"phone"`
		Address     *string `json:"address"`
		LinkedinURL *string `json:"linkedinUrl"`
		CoverLetter *string `json:"coverLetter"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := bson.M{}
	for field, v := range map[string]*string{
		"firstName":   req.FirstName,
		"lastName":    req.LastName,
		"phone":       req.Phone,
		"address":     req.Address,
		"linkedinUrl": req.LinkedinURL,
		"coverLetter": req.CoverLetter,
	} {
		if v != nil {
			patch[field] = *v
		}
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	app, err := h.store.UpdateApplication(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusOK, "Application updated successfully", app)
}

// UpdateStatus handles PATCH /api/job-applications/{id}/status.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !model.ValidApplicationStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Status must be one of pending, reviewing, accepted, rejected")
		return
	}

	app, err := h.store.UpdateApplicationStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusOK, "Application status updated successfully", app)
}

// Delete handles DELETE /api/job-applications/{id}.
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteApplication(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Application not found")
		return
	}
	writeData(w, http.StatusOK, "Application deleted successfully", nil)
}
