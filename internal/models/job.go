package models

import "time"

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

type SectionKind string

const (
	SectionStandalone SectionKind = "standalone"
	SectionReading    SectionKind = "reading"
	SectionWriting    SectionKind = "writing"
)

// TestSection is one subject-area slice of a complete test. Kind
// discriminates the payload: standalone sections carry questions, reading
// sections carry passages, writing sections a single prompt. The shapes
// stay distinct end to end.
type TestSection struct {
	Kind         SectionKind `json:"kind"`
	ContentType  ContentType `json:"content_type"`
	Instructions string      `json:"instructions"`
	Questions    []Question  `json:"questions,omitempty"`
	Passages     []Passage   `json:"passages,omitempty"`
	Prompt       *Prompt     `json:"prompt,omitempty"`
}

// Job tracks one complete-test generation request. Jobs are addressable
// only by their opaque id; callers poll but never mutate.
type Job struct {
	ID                string                 `json:"id"`
	Status            JobStatus              `json:"status"`
	RequestedSections []ContentType          `json:"requested_sections"`
	CompletedSections []TestSection          `json:"completed_sections"`
	Errors            map[ContentType]string `json:"errors"`
	Difficulty        Difficulty             `json:"difficulty"`
	ForceLLM          bool                   `json:"force_llm"`
	CreatedAt         time.Time              `json:"created_at"`
	CompletedAt       *time.Time             `json:"completed_at,omitempty"`
}

// ── Job API Shapes ────────────────────────────────────────

type StartTestRequest struct {
	Difficulty       Difficulty          `json:"difficulty"`
	IncludeSections  []ContentType       `json:"include_sections"`
	CustomCounts     map[ContentType]int `json:"custom_counts,omitempty"`
	IsOfficialFormat bool                `json:"is_official_format,omitempty"`
}

type StartTestResponse struct {
	JobID string `json:"job_id"`
}

type JobStatusResponse struct {
	Status         JobStatus `json:"status"`
	CompletedCount int       `json:"completed_count"`
	RequestedCount int       `json:"requested_count"`
}

type CompleteTestResult struct {
	JobID    string                 `json:"job_id"`
	Status   JobStatus              `json:"status"`
	Sections []TestSection          `json:"sections"`
	Errors   map[ContentType]string `json:"errors"`
}
