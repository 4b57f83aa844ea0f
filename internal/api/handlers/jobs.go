package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/travel-reconcile/internal/api/dto"
	"github.com/eshaffer321/travel-reconcile/internal/application/reconcile"
)

// JobsHandler handles background reconciliation status requests.
type JobsHandler struct {
	*Base
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(service *reconcile.Service) *JobsHandler {
	return &JobsHandler{
		Base: NewBase(service),
	}
}

// List handles GET /api/jobs - lists background jobs, newest first.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.service.ListJobs()

	response := dto.JobListResponse{
		Jobs:  make([]dto.JobResponse, 0, len(jobs)),
		Count: len(jobs),
	}
	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toJobResponse(job))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// Get handles GET /api/jobs/{jobId} - returns a job's status and, once
// finished, its report or error.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("job ID is required"))
		return
	}

	job, err := h.service.GetJob(jobID)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, dto.NotFoundError("job"))
		return
	}

	h.WriteJSON(w, http.StatusOK, toJobResponse(job))
}

// toJobResponse converts a service job to an API response.
func toJobResponse(job reconcile.Job) dto.JobResponse {
	response := dto.JobResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		Category:  string(job.Category),
		StartedAt: job.StartedAt.Format(time.RFC3339),
		Progress:  job.Progress,
	}

	if job.CompletedAt != nil {
		completedAt := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedAt
	}

	if job.Report != nil {
		report := toReportResponse(job.Report)
		response.Report = &report
	}

	if job.Error != "" {
		errMsg := job.Error
		response.Error = &errMsg
	}

	return response
}
