package content

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ssat-prep/backend/internal/generator"
	"github.com/ssat-prep/backend/internal/models"
)

// PoolStore is the slice of the pool adapter the service consumes.
type PoolStore interface {
	ClaimQuestions(ctx context.Context, ct models.ContentType, difficulty models.Difficulty, topic string, count int, userID int64) ([]models.PoolQuestion, error)
	ClaimPassages(ctx context.Context, difficulty models.Difficulty, topic string, count int, userID int64) ([]models.PoolPassage, error)
	ClaimPrompts(ctx context.Context, count int, userID int64) ([]models.PoolPrompt, error)
	InsertQuestions(ctx context.Context, sessionID int64, questions []models.PoolQuestion) ([]models.PoolQuestion, error)
	InsertPassages(ctx context.Context, sessionID int64, passages []models.PoolPassage) ([]models.PoolPassage, error)
	InsertPrompts(ctx context.Context, sessionID int64, prompts []models.PoolPrompt) ([]models.PoolPrompt, error)
	MarkUsed(ctx context.Context, kind models.ItemKind, itemIDs []int64, userID int64) error
	CreateSession(ctx context.Context, ct models.ContentType, difficulty models.Difficulty) (int64, error)
	CompleteSession(ctx context.Context, sessionID int64, itemCount int, provider, model string, promptTokens, outputTokens int, timeMs int64) error
	FailSession(ctx context.Context, sessionID int64, errMsg string) error
}

// ContentGenerator is the slice of the LLM adapter the service consumes.
type ContentGenerator interface {
	GenerateQuestions(ctx context.Context, ct models.ContentType, difficulty models.Difficulty, topic string, count int) ([]generator.Question, *generator.LLMResponse, error)
	GeneratePassages(ctx context.Context, difficulty models.Difficulty, topic string, count int) ([]generator.Passage, *generator.LLMResponse, error)
	GeneratePrompts(ctx context.Context, topic string, count int) ([]generator.Prompt, *generator.LLMResponse, error)
	Provider() string
	ModelName() string
}

// Service is the content generation policy core: pool-first with a
// role-gated LLM fallback. Role is consulted exactly once, in Generate;
// handlers never re-check it.
type Service struct {
	pool PoolStore
	gen  ContentGenerator
}

func NewService(pool PoolStore, gen ContentGenerator) *Service {
	return &Service{pool: pool, gen: gen}
}

// Generate serves one content request.
//
// Pool-first: claim up to count unused items for the user. A fully
// satisfied claim returns immediately with source=pool and never touches
// the LLM. On shortfall, free and premium callers get the pool portion
// (or PoolExhaustedError when the pool supplied nothing); admin callers
// get the shortfall generated live, persisted into the pool, and merged.
// ForceLLM skips the pool claim entirely. Claimed items are never rolled
// back when the fallback fails; over-marking is accepted.
func (s *Service) Generate(ctx context.Context, req models.ContentRequest) (*models.GeneratedContent, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	switch req.ContentType {
	case models.ContentReading:
		return s.generatePassages(ctx, req)
	case models.ContentWriting:
		return s.generatePrompts(ctx, req)
	default:
		return s.generateQuestions(ctx, req)
	}
}

func validateRequest(req models.ContentRequest) error {
	if !models.ValidContentTypes[req.ContentType] {
		return &ValidationError{Message: fmt.Sprintf("unknown content_type: %q", req.ContentType)}
	}
	if req.ContentType != models.ContentWriting && !models.ValidDifficulties[req.Difficulty] {
		return &ValidationError{Message: fmt.Sprintf("unknown difficulty: %q", req.Difficulty)}
	}
	if max := models.MaxCountFor(req.ContentType); req.Count < 1 || req.Count > max {
		return &ValidationError{Message: fmt.Sprintf("count must be between 1 and %d for %s", max, req.ContentType)}
	}
	return nil
}

// shortfallDenied resolves the non-admin shortfall branch: partial pool
// results are returned as-is, an empty claim becomes PoolExhaustedError.
func shortfallDenied(req models.ContentRequest, served int) error {
	if served > 0 {
		log.Printf("[content] pool shortfall for %s/%s: serving %d of %d requested",
			req.ContentType, req.Difficulty, served, req.Count)
		return nil
	}
	return &PoolExhaustedError{
		ContentType: req.ContentType,
		Difficulty:  req.Difficulty,
		Requested:   req.Count,
	}
}

func mergedSource(poolCount int) models.ContentSource {
	if poolCount > 0 {
		return models.SourceMixed
	}
	return models.SourceLLM
}

// ── Standalone Questions ────────────────────────────────

func (s *Service) generateQuestions(ctx context.Context, req models.ContentRequest) (*models.GeneratedContent, error) {
	var claimed []models.PoolQuestion
	if !req.ForceLLM {
		var err error
		claimed, err = s.pool.ClaimQuestions(ctx, req.ContentType, req.Difficulty, req.Topic, req.Count, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("pool claim: %w", err)
		}
		if len(claimed) == req.Count {
			return &models.GeneratedContent{
				Kind:      models.KindQuestions,
				Questions: QuestionsFromPool(claimed),
				Metadata:  models.ContentMetadata{Source: models.SourcePool},
			}, nil
		}
	}

	if req.Role != models.RoleAdmin {
		if err := shortfallDenied(req, len(claimed)); err != nil {
			return nil, err
		}
		return &models.GeneratedContent{
			Kind:      models.KindQuestions,
			Questions: QuestionsFromPool(claimed),
			Metadata:  models.ContentMetadata{Source: models.SourcePool},
		}, nil
	}

	shortfall := req.Count - len(claimed)
	sessionID, err := s.pool.CreateSession(ctx, req.ContentType, req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	start := time.Now()
	parsed, llmResp, err := s.gen.GenerateQuestions(ctx, req.ContentType, req.Difficulty, req.Topic, shortfall)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.failSession(ctx, sessionID, err)
		return nil, &GenerationError{Provider: s.gen.Provider(), Err: err}
	}

	inserted, err := s.pool.InsertQuestions(ctx, sessionID, PoolQuestionsFromParsed(req.ContentType, req.Difficulty, req.Topic, parsed))
	if err != nil {
		s.failSession(ctx, sessionID, err)
		return nil, fmt.Errorf("persist generated questions: %w", err)
	}
	s.completeSession(ctx, sessionID, len(inserted), llmResp, elapsed)
	s.markUsed(ctx, models.ItemKindQuestion, questionIDs(inserted), req.UserID)

	merged := append(QuestionsFromPool(claimed), QuestionsFromPool(inserted)...)
	return &models.GeneratedContent{
		Kind:      models.KindQuestions,
		Questions: merged,
		Metadata: models.ContentMetadata{
			Source:           mergedSource(len(claimed)),
			Provider:         s.gen.Provider(),
			GenerationTimeMs: elapsed,
		},
	}, nil
}

// ── Reading Passages ────────────────────────────────────

func (s *Service) generatePassages(ctx context.Context, req models.ContentRequest) (*models.GeneratedContent, error) {
	var claimed []models.PoolPassage
	if !req.ForceLLM {
		var err error
		claimed, err = s.pool.ClaimPassages(ctx, req.Difficulty, req.Topic, req.Count, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("pool claim: %w", err)
		}
		if len(claimed) == req.Count {
			return &models.GeneratedContent{
				Kind:     models.KindPassages,
				Passages: PassagesFromPool(claimed),
				Metadata: models.ContentMetadata{Source: models.SourcePool},
			}, nil
		}
	}

	if req.Role != models.RoleAdmin {
		if err := shortfallDenied(req, len(claimed)); err != nil {
			return nil, err
		}
		return &models.GeneratedContent{
			Kind:     models.KindPassages,
			Passages: PassagesFromPool(claimed),
			Metadata: models.ContentMetadata{Source: models.SourcePool},
		}, nil
	}

	shortfall := req.Count - len(claimed)
	sessionID, err := s.pool.CreateSession(ctx, req.ContentType, req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	start := time.Now()
	parsed, llmResp, err := s.gen.GeneratePassages(ctx, req.Difficulty, req.Topic, shortfall)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.failSession(ctx, sessionID, err)
		return nil, &GenerationError{Provider: s.gen.Provider(), Err: err}
	}

	inserted, err := s.pool.InsertPassages(ctx, sessionID, PoolPassagesFromParsed(req.Difficulty, req.Topic, parsed))
	if err != nil {
		s.failSession(ctx, sessionID, err)
		return nil, fmt.Errorf("persist generated passages: %w", err)
	}
	s.completeSession(ctx, sessionID, len(inserted), llmResp, elapsed)
	s.markUsed(ctx, models.ItemKindPassage, passageIDs(inserted), req.UserID)

	merged := append(PassagesFromPool(claimed), PassagesFromPool(inserted)...)
	return &models.GeneratedContent{
		Kind:     models.KindPassages,
		Passages: merged,
		Metadata: models.ContentMetadata{
			Source:           mergedSource(len(claimed)),
			Provider:         s.gen.Provider(),
			GenerationTimeMs: elapsed,
		},
	}, nil
}

// ── Writing Prompts ─────────────────────────────────────

func (s *Service) generatePrompts(ctx context.Context, req models.ContentRequest) (*models.GeneratedContent, error) {
	var claimed []models.PoolPrompt
	if !req.ForceLLM {
		var err error
		claimed, err = s.pool.ClaimPrompts(ctx, req.Count, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("pool claim: %w", err)
		}
		if len(claimed) == req.Count {
			return &models.GeneratedContent{
				Kind:     models.KindPrompts,
				Prompts:  PromptsFromPool(claimed),
				Metadata: models.ContentMetadata{Source: models.SourcePool},
			}, nil
		}
	}

	if req.Role != models.RoleAdmin {
		if err := shortfallDenied(req, len(claimed)); err != nil {
			return nil, err
		}
		return &models.GeneratedContent{
			Kind:     models.KindPrompts,
			Prompts:  PromptsFromPool(claimed),
			Metadata: models.ContentMetadata{Source: models.SourcePool},
		}, nil
	}

	shortfall := req.Count - len(claimed)
	sessionID, err := s.pool.CreateSession(ctx, req.ContentType, "")
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	start := time.Now()
	parsed, llmResp, err := s.gen.GeneratePrompts(ctx, req.Topic, shortfall)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		s.failSession(ctx, sessionID, err)
		return nil, &GenerationError{Provider: s.gen.Provider(), Err: err}
	}

	inserted, err := s.pool.InsertPrompts(ctx, sessionID, PoolPromptsFromParsed(parsed))
	if err != nil {
		s.failSession(ctx, sessionID, err)
		return nil, fmt.Errorf("persist generated prompts: %w", err)
	}
	s.completeSession(ctx, sessionID, len(inserted), llmResp, elapsed)
	s.markUsed(ctx, models.ItemKindPrompt, promptIDs(inserted), req.UserID)

	merged := append(PromptsFromPool(claimed), PromptsFromPool(inserted)...)
	return &models.GeneratedContent{
		Kind:    models.KindPrompts,
		Prompts: merged,
		Metadata: models.ContentMetadata{
			Source:           mergedSource(len(claimed)),
			Provider:         s.gen.Provider(),
			GenerationTimeMs: elapsed,
		},
	}, nil
}

// ── Session and Usage Bookkeeping ───────────────────────

// Session and usage writes are best-effort provenance; a failure there is
// logged but never fails a request that already has content to return.

func (s *Service) completeSession(ctx context.Context, sessionID int64, itemCount int, resp *generator.LLMResponse, elapsed int64) {
	var promptTokens, outputTokens int
	if resp != nil {
		promptTokens = resp.PromptTokens
		outputTokens = resp.OutputTokens
	}
	if err := s.pool.CompleteSession(ctx, sessionID, itemCount, s.gen.Provider(), s.gen.ModelName(), promptTokens, outputTokens, elapsed); err != nil {
		log.Printf("WARN: failed to complete session %d: %v", sessionID, err)
	}
}

func (s *Service) failSession(ctx context.Context, sessionID int64, cause error) {
	if err := s.pool.FailSession(ctx, sessionID, cause.Error()); err != nil {
		log.Printf("WARN: failed to mark session %d failed: %v", sessionID, err)
	}
}

func (s *Service) markUsed(ctx context.Context, kind models.ItemKind, ids []int64, userID int64) {
	if err := s.pool.MarkUsed(ctx, kind, ids, userID); err != nil {
		log.Printf("WARN: failed to mark %d %s items used: %v", len(ids), kind, err)
	}
}

func questionIDs(qs []models.PoolQuestion) []int64 {
	ids := make([]int64, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

func passageIDs(ps []models.PoolPassage) []int64 {
	ids := make([]int64, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}

func promptIDs(ps []models.PoolPrompt) []int64 {
	ids := make([]int64, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}
