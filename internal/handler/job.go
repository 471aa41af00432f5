package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/query"
)

// JobStore is the slice of the store the career posting endpoints need.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, p query.Params) (*query.Result[model.Job], error)
	UpdateJob(ctx context.Context, id string, patch bson.M) (*model.Job, error)
	UpdateJobStatus(ctx context.Context, id, status string) (*model.Job, error)
	DeleteJob(ctx context.Context, id string) error
	JobsWithApplicationCounts(ctx context.Context) ([]model.JobWithApplicationCount, error)
}

// JobHandler serves the career posting endpoints.
type JobHandler struct {
	store  JobStore
	logger *slog.Logger
}

// NewJobHandler creates the career posting endpoint handler.
func NewJobHandler(store JobStore, logger *slog.Logger) *JobHandler {
	return &JobHandler{store: store, logger: logger}
}

// List handles GET /api/careers, the public listing. Only active postings
// are visible; type, location, and search narrow the result.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	p := query.Parse(r.URL.Query(), query.Defaults{Limit: 10}).
		WithFilter("status", model.JobStatusActive)
	if jobType := r.URL.Query().Get("type"); jobType != "" {
		p = p.WithFilter("type", jobType)
	}
	if location := r.URL.Query().Get("location"); location != "" {
		p = p.WithFilter("location", location)
	}

	result, err := h.store.ListJobs(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	writeData(w, http.StatusOK, "", result)
}

// ListAll handles GET /api/careers/admin/all: every posting regardless of
// status, decorated with application counts.
func (h *JobHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.JobsWithApplicationCounts(r.Context())
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	writeData(w, http.StatusOK, "", jobs)
}

// Get handles GET /api/careers/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	writeData(w, http.StatusOK, "", job)
}

// Create handles POST /api/careers.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var job model.Job
	if err := readJSON(r, &job); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := model.ValidateJob(job.Title, job.Description, job.Location, job.Type, job.Status); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if err := h.store.CreateJob(r.Context(), &job); err != nil {
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	writeData(w, http.StatusCreated, "Job created successfully", job)
}

// Update handles PUT /api/careers/{id}. Only the provided fields change.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        *string   `json:"title"`
		Description  *string   `json:"description"`
		Location     *string   `json:"location"`
		Type         *string   `json:"type"`
		Experience   *string   `json:"experience"`
		Requirements *[]string `json:"requirements"`
		Salary       *string   `json:"salary"`
		Status       *string   `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	errs := map[string]string{}
	patch := bson.M{}
	setString := func(field string, v *string, required, message string) {
		if v == nil {
			return
		}
		if required != "" && *v == "" {
			errs[field] = message
		}
		patch[field] = *v
	}
	setString("title", req.Title, "title", "Title is required")
	setString("description", req.Description, "description", "Description is required")
	setString("location", req.Location, "location", "Location is required")
	setString("type", req.Type, "type", "Job type is required")
	setString("experience", req.Experience, "", "")
	setString("salary", req.Salary, "", "")
	if req.Requirements != nil {
		patch["requirements"] = *req.Requirements
	}
	if req.Status != nil {
		if *req.Status != model.JobStatusActive && *req.Status != model.JobStatusInactive {
			errs["status"] = "Status must be either active or inactive"
		}
		patch["status"] = *req.Status
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	job, err := h.store.UpdateJob(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	writeData(w, http.StatusOK, "Job updated successfully", job)
}

// UpdateStatus handles PATCH /api/careers/{id}/status.
func (h *JobHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != model.JobStatusActive && req.Status != model.JobStatusInactive {
		writeError(w, http.StatusBadRequest, "Status must be either active or inactive")
		return
	}

	job, err := h.store.UpdateJobStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	writeData(w, http.StatusOK, "Job status updated successfully", job)
}

// Delete handles DELETE /api/careers/{id}.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteJob(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, r, h.logger, err, "Job not found")
		return
	}
	writeData(w, http.StatusOK, "Job deleted successfully", nil)
}
