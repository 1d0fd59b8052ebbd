package content

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ssat-prep/backend/internal/generator"
	"github.com/ssat-prep/backend/internal/models"
)

// InventoryStore is the inventory slice of the pool adapter the
// replenisher consumes alongside the write methods it shares with the
// service.
type InventoryStore interface {
	PoolStore
	CountInventory(ctx context.Context, ct models.ContentType, difficulty models.Difficulty) (int, error)
}

// Replenisher tops up depleted pool buckets in the background so that the
// interactive pool-first path keeps hitting. Disabled unless POOL_AUTOGEN
// is set.
type Replenisher struct {
	pool      InventoryStore
	gen       ContentGenerator
	minLevel  int
	batchSize int
	interval  time.Duration
}

func NewReplenisher(pool InventoryStore, gen ContentGenerator) *Replenisher {
	return &Replenisher{
		pool:      pool,
		gen:       gen,
		minLevel:  envInt("POOL_MIN_INVENTORY", 20),
		batchSize: envInt("POOL_REFILL_BATCH", 10),
		interval:  time.Duration(envInt("POOL_REFILL_INTERVAL_SECONDS", 300)) * time.Second,
	}
}

// Enabled reports whether the worker should run at all.
func Enabled() bool {
	return os.Getenv("POOL_AUTOGEN") == "true"
}

func (r *Replenisher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("[pool-worker] Replenisher started (min inventory %d, batch %d)", r.minLevel, r.batchSize)

	for {
		select {
		case <-ctx.Done():
			log.Println("[pool-worker] Shutting down")
			return
		case <-ticker.C:
			r.refillOnce(ctx)
		}
	}
}

// refillOnce scans every bucket and refills at most one per tick to keep
// LLM spend bounded.
func (r *Replenisher) refillOnce(ctx context.Context) {
	for _, ct := range []models.ContentType{
		models.ContentQuantitative, models.ContentAnalogy, models.ContentSynonym,
		models.ContentReading, models.ContentWriting,
	} {
		for _, difficulty := range bucketDifficulties(ct) {
			count, err := r.pool.CountInventory(ctx, ct, difficulty)
			if err != nil {
				log.Printf("[pool-worker] inventory check failed for %s/%s: %v", ct, difficulty, err)
				continue
			}
			if count >= r.minLevel {
				continue
			}
			log.Printf("[pool-worker] bucket %s/%s at %d (min %d), refilling", ct, difficulty, count, r.minLevel)
			if err := r.refillBucket(ctx, ct, difficulty); err != nil {
				log.Printf("[pool-worker] refill failed for %s/%s: %v", ct, difficulty, err)
			}
			return
		}
	}
}

func (r *Replenisher) refillBucket(ctx context.Context, ct models.ContentType, difficulty models.Difficulty) error {
	sessionID, err := r.pool.CreateSession(ctx, ct, difficulty)
	if err != nil {
		return err
	}

	start := time.Now()
	var itemCount int
	var llmResp *generator.LLMResponse

	switch ct {
	case models.ContentReading:
		parsed, resp, err := r.gen.GeneratePassages(ctx, difficulty, "", passageBatch(r.batchSize))
		if err != nil {
			r.pool.FailSession(ctx, sessionID, err.Error())
			return err
		}
		inserted, err := r.pool.InsertPassages(ctx, sessionID, PoolPassagesFromParsed(difficulty, "", parsed))
		if err != nil {
			r.pool.FailSession(ctx, sessionID, err.Error())
			return err
		}
		itemCount, llmResp = len(inserted), resp
	case models.ContentWriting:
		parsed, resp, err := r.gen.GeneratePrompts(ctx, "", promptBatch(r.batchSize))
		if err != nil {
			r.pool.FailSession(ctx, sessionID, err.Error())
			return err
		}
		inserted, err := r.pool.InsertPrompts(ctx, sessionID, PoolPromptsFromParsed(parsed))
		if err != nil {
			r.pool.FailSession(ctx, sessionID, err.Error())
			return err
		}
		itemCount, llmResp = len(inserted), resp
	default:
		parsed, resp, err := r.gen.GenerateQuestions(ctx, ct, difficulty, "", r.batchSize)
		if err != nil {
			r.pool.FailSession(ctx, sessionID, err.Error())
			return err
		}
		parsed = filterStructural(ct, parsed)
		if generator.AnswerDistributionSkewed(parsed) {
			log.Printf("WARN: [pool-worker] skewed answer distribution in %s/%s batch", ct, difficulty)
		}
		inserted, err := r.pool.InsertQuestions(ctx, sessionID, PoolQuestionsFromParsed(ct, difficulty, "", parsed))
		if err != nil {
			r.pool.FailSession(ctx, sessionID, err.Error())
			return err
		}
		itemCount, llmResp = len(inserted), resp
	}

	var promptTokens, outputTokens int
	if llmResp != nil {
		promptTokens = llmResp.PromptTokens
		outputTokens = llmResp.OutputTokens
	}
	elapsed := time.Since(start).Milliseconds()
	if err := r.pool.CompleteSession(ctx, sessionID, itemCount, r.gen.Provider(), r.gen.ModelName(), promptTokens, outputTokens, elapsed); err != nil {
		log.Printf("WARN: failed to complete session %d: %v", sessionID, err)
	}
	log.Printf("[pool-worker] refilled %s/%s with %d items in %dms", ct, difficulty, itemCount, elapsed)
	return nil
}

// filterStructural drops questions that fail structural compliance before
// they reach the pool. User-facing admin generation returns everything the
// parser accepted; only the unattended autogen path quality-gates.
func filterStructural(ct models.ContentType, questions []generator.Question) []generator.Question {
	kept := questions[:0]
	for _, q := range questions {
		if score := generator.ComputeStructuralScore(q, ct); !score.OK() {
			log.Printf("WARN: [pool-worker] dropping %s question failing structural checks: %+v", ct, score)
			continue
		}
		kept = append(kept, q)
	}
	return kept
}

// Writing has a single undifferentiated bucket.
func bucketDifficulties(ct models.ContentType) []models.Difficulty {
	if ct == models.ContentWriting {
		return []models.Difficulty{""}
	}
	return []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
}

func passageBatch(batch int) int {
	if batch > models.MaxPassageCount {
		return models.MaxPassageCount
	}
	return batch
}

func promptBatch(batch int) int {
	if batch > models.MaxPromptCount {
		return models.MaxPromptCount
	}
	return batch
}

func envInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
