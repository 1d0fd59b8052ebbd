package testjob

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ssat-prep/backend/internal/models"
)

var (
	// ErrJobNotFound means the id does not correspond to a tracked job.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotReady means the job exists but has not reached a terminal
	// status yet.
	ErrJobNotReady = errors.New("job not ready")
)

// ContentService is the single entry point sections are generated through.
type ContentService interface {
	Generate(ctx context.Context, req models.ContentRequest) (*models.GeneratedContent, error)
}

// Manager tracks complete-test generation jobs in memory. Jobs are mutated
// only by the background routine that owns them; readers get snapshots.
// Job ids are opaque uuids, unguessable without the start response.
type Manager struct {
	content ContentService

	mu   sync.Mutex
	jobs map[string]*models.Job

	sectionTimeout time.Duration
	retention      time.Duration
}

func NewManager(content ContentService) *Manager {
	return &Manager{
		content:        content,
		jobs:           make(map[string]*models.Job),
		sectionTimeout: time.Duration(envInt("JOB_SECTION_TIMEOUT_SECONDS", 180)) * time.Second,
		retention:      time.Duration(envInt("JOB_RETENTION_MINUTES", 60)) * time.Minute,
	}
}

// Start registers a new job and kicks off background generation. It
// returns immediately with the job id; callers poll Status and fetch
// Result once the job is terminal.
func (m *Manager) Start(req models.StartTestRequest, userID int64, role models.Role, forceLLM bool) (string, error) {
	sections, err := resolveSections(req)
	if err != nil {
		return "", err
	}
	if req.Difficulty != "" && !models.ValidDifficulties[req.Difficulty] {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidStart, req.Difficulty)
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	job := &models.Job{
		ID:                uuid.NewString(),
		Status:            models.JobPending,
		RequestedSections: sections,
		Errors:            make(map[models.ContentType]string),
		Difficulty:        difficulty,
		ForceLLM:          forceLLM,
		CreatedAt:         time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	counts := sectionCounts(sections, req.CustomCounts, req.IsOfficialFormat)
	go m.run(job.ID, sections, counts, difficulty, userID, role, forceLLM)

	log.Printf("[testjob] started job %s for user %d (%d sections)", job.ID, userID, len(sections))
	return job.ID, nil
}

// run generates every section concurrently. Sections are independent: one
// section's failure or slowness never blocks another, and results append
// in completion order.
func (m *Manager) run(jobID string, sections []models.ContentType, counts map[models.ContentType]int, difficulty models.Difficulty, userID int64, role models.Role, forceLLM bool) {
	m.setStatus(jobID, models.JobInProgress)

	var wg sync.WaitGroup
	for _, section := range sections {
		wg.Add(1)
		go func(section models.ContentType) {
			defer wg.Done()
			m.runSection(jobID, section, counts[section], difficulty, userID, role, forceLLM)
		}(section)
	}
	wg.Wait()

	m.finalize(jobID)
}

func (m *Manager) runSection(jobID string, section models.ContentType, count int, difficulty models.Difficulty, userID int64, role models.Role, forceLLM bool) {
	ctx, cancel := context.WithTimeout(context.Background(), m.sectionTimeout)
	defer cancel()

	req := models.ContentRequest{
		ContentType: section,
		Difficulty:  difficulty,
		Count:       count,
		UserID:      userID,
		Role:        role,
		ForceLLM:    forceLLM,
	}

	result, err := m.content.Generate(ctx, req)
	if err != nil {
		log.Printf("[testjob] job %s section %s failed: %v", jobID, section, err)
		m.recordError(jobID, section, err)
		return
	}

	m.appendSection(jobID, buildSection(section, result))
}

func buildSection(section models.ContentType, result *models.GeneratedContent) models.TestSection {
	ts := models.TestSection{
		ContentType:  section,
		Instructions: sectionInstructions[section],
	}
	switch result.Kind {
	case models.KindPassages:
		ts.Kind = models.SectionReading
		ts.Passages = result.Passages
	case models.KindPrompts:
		ts.Kind = models.SectionWriting
		if len(result.Prompts) > 0 {
			ts.Prompt = &result.Prompts[0]
		}
	default:
		ts.Kind = models.SectionStandalone
		ts.Questions = result.Questions
	}
	return ts
}

// ── Job State Transitions ───────────────────────────────

func (m *Manager) setStatus(jobID string, status models.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = status
	}
}

func (m *Manager) appendSection(jobID string, section models.TestSection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.CompletedSections = append(job.CompletedSections, section)
	}
}

func (m *Manager) recordError(jobID string, section models.ContentType, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Errors[section] = err.Error()
	}
}

// finalize marks the job terminal. A job fails only when every section
// failed; any completed section makes the whole job completed.
func (m *Manager) finalize(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	if len(job.CompletedSections) == 0 {
		job.Status = models.JobFailed
	} else {
		job.Status = models.JobCompleted
	}
	now := time.Now()
	job.CompletedAt = &now
	log.Printf("[testjob] job %s %s (%d/%d sections, %d errors)",
		jobID, job.Status, len(job.CompletedSections), len(job.RequestedSections), len(job.Errors))
}

// ── Queries ─────────────────────────────────────────────

// Status returns a snapshot of the job.
func (m *Manager) Status(jobID string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return snapshot(job), nil
}

// Result returns the terminal outcome of a job, or ErrJobNotReady while it
// is still running.
func (m *Manager) Result(jobID string) (*models.CompleteTestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	if job.Status != models.JobCompleted && job.Status != models.JobFailed {
		return nil, ErrJobNotReady
	}

	snap := snapshot(job)
	return &models.CompleteTestResult{
		JobID:    snap.ID,
		Status:   snap.Status,
		Sections: snap.CompletedSections,
		Errors:   snap.Errors,
	}, nil
}

// snapshot copies the mutable parts so callers never alias the live job.
func snapshot(job *models.Job) *models.Job {
	out := *job
	out.RequestedSections = append([]models.ContentType(nil), job.RequestedSections...)
	out.CompletedSections = append([]models.TestSection(nil), job.CompletedSections...)
	out.Errors = make(map[models.ContentType]string, len(job.Errors))
	for k, v := range job.Errors {
		out.Errors[k] = v
	}
	return &out
}

// ── Retention ───────────────────────────────────────────

// StartReaper evicts terminal jobs past the retention window so the
// in-memory registry stays bounded.
func (m *Manager) StartReaper(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	log.Printf("[testjob] reaper started (retention %s)", m.retention)

	for {
		select {
		case <-ctx.Done():
			log.Println("[testjob] reaper shutting down")
			return
		case <-ticker.C:
			m.reap(time.Now())
		}
	}
}

func (m *Manager) reap(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, job := range m.jobs {
		if job.CompletedAt != nil && now.Sub(*job.CompletedAt) > m.retention {
			delete(m.jobs, id)
		}
	}
}

func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
