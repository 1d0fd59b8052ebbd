package content

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ssat-prep/backend/internal/models"
)

// StatsStore is the inventory slice of the pool adapter used by the admin
// stats endpoint.
type StatsStore interface {
	Inventory(ctx context.Context) ([]models.InventoryBucket, error)
}

type Handler struct {
	service *Service
	stats   StatsStore
}

func NewHandler(service *Service, stats StatsStore) *Handler {
	return &Handler{service: service, stats: stats}
}

func identityFromContext(r *http.Request) (int64, models.Role, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	if !ok {
		return 0, "", false
	}
	role, ok := r.Context().Value("role").(models.Role)
	return uid, role, ok
}

// Generate handles POST /generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, false)
}

// AdminGenerate handles POST /admin/generate. Identical contract with
// force_llm pinned true; the admin router has already gated the role.
func (h *Handler) AdminGenerate(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, true)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request, forceLLM bool) {
	userID, role, ok := identityFromContext(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.UserID = userID
	req.Role = role
	req.ForceLLM = forceLLM

	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		writeGenerateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeGenerateError maps service errors onto the wire contract. Pool
// exhaustion gets a limit_exceeded body so clients can show an
// availability message instead of a generic failure.
func writeGenerateError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var exhaustedErr *PoolExhaustedError
	var genErr *GenerationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: validationErr.Message})
	case errors.As(err, &exhaustedErr):
		writeJSON(w, http.StatusTooManyRequests, models.ErrorResponse{
			Error:         "No practice content available right now. Please try again later.",
			LimitExceeded: true,
			LimitsInfo: &models.LimitsInfo{
				ContentType: exhaustedErr.ContentType,
				Difficulty:  exhaustedErr.Difficulty,
				Requested:   exhaustedErr.Requested,
				Available:   exhaustedErr.Available,
			},
		})
	case errors.As(err, &genErr):
		log.Printf("[content] generation failed: %v", genErr)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Content generation failed. Please try again."})
	default:
		log.Printf("[content] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

// PoolStats handles GET /admin/pool/stats.
func (h *Handler) PoolStats(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.stats.Inventory(r.Context())
	if err != nil {
		log.Printf("[content] pool stats failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load pool stats"})
		return
	}

	resp := models.PoolStatsResponse{Buckets: buckets}
	for _, b := range buckets {
		resp.Total += b.Total
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
