package testjob

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ssat-prep/backend/internal/models"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// StartTest handles POST /generate/complete-test.
func (h *Handler) StartTest(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, false)
}

// AdminStartTest handles POST /admin/generate/complete-test with force_llm
// pinned true.
func (h *Handler) AdminStartTest(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, true)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request, forceLLM bool) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	role, _ := r.Context().Value("role").(models.Role)

	var req models.StartTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	jobID, err := h.manager.Start(req, userID, role, forceLLM)
	if err != nil {
		if errors.Is(err, ErrInvalidStart) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start test generation"})
		return
	}

	writeJSON(w, http.StatusAccepted, models.StartTestResponse{JobID: jobID})
}

// JobStatus handles GET /generate/complete-test/{job_id}/status.
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	job, err := h.manager.Status(jobID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Job not found"})
		return
	}

	writeJSON(w, http.StatusOK, models.JobStatusResponse{
		Status:         job.Status,
		CompletedCount: len(job.CompletedSections),
		RequestedCount: len(job.RequestedSections),
	})
}

// JobResult handles GET /generate/complete-test/{job_id}/result.
func (h *Handler) JobResult(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	result, err := h.manager.Result(jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrJobNotFound):
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Job not found"})
		case errors.Is(err, ErrJobNotReady):
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Job still running"})
		default:
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
