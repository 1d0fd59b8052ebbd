package content

import (
	"fmt"

	"github.com/ssat-prep/backend/internal/models"
)

// ValidationError rejects a malformed request before any pool or LLM work.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PoolExhaustedError reports that the pool could not cover the request and
// the caller's role does not permit LLM fallback. Available counts only the
// items this user has not yet seen.
type PoolExhaustedError struct {
	ContentType models.ContentType
	Difficulty  models.Difficulty
	Requested   int
	Available   int
}

func (e *PoolExhaustedError) Error() string {
	return fmt.Sprintf("pool exhausted for %s/%s: requested %d, available %d",
		e.ContentType, e.Difficulty, e.Requested, e.Available)
}

// GenerationError wraps a provider failure after the fallback path was
// taken. It never surfaces for callers whose role forbids fallback.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (provider %s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
