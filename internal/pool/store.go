package pool

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/ssat-prep/backend/internal/models"
)

// Store is the typed adapter over the persistent content inventory. All
// pool mutation goes through its single-statement operations; no caller
// reads then writes pool state across two calls.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Claiming ────────────────────────────────────────────

// ClaimQuestions atomically claims up to count unused questions of the
// given type and difficulty for userID and marks them used. The locking
// clause keeps concurrent callers off the same rows; the usage unique
// constraint makes the mark at-most-once per item per user.
func (s *Store) ClaimQuestions(ctx context.Context, ct models.ContentType, difficulty models.Difficulty, topic string, count int, userID int64) ([]models.PoolQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`WITH candidates AS (
			SELECT id FROM pool_questions
			WHERE content_type = $1 AND difficulty = $2
			  AND ($3 = '' OR topic = $3)
			  AND NOT EXISTS (
				SELECT 1 FROM pool_item_usages u
				WHERE u.item_kind = 'question' AND u.item_id = pool_questions.id AND u.user_id = $4
			  )
			ORDER BY id
			LIMIT $5
			FOR UPDATE SKIP LOCKED
		), marked AS (
			INSERT INTO pool_item_usages (item_kind, item_id, user_id)
			SELECT 'question', id, $4 FROM candidates
			ON CONFLICT (item_kind, item_id, user_id) DO NOTHING
			RETURNING item_id
		)
		SELECT q.id, q.session_id, q.content_type, q.difficulty, q.topic,
		       q.question_text, q.choices, q.correct_answer_id, q.explanation, q.created_at
		FROM pool_questions q
		JOIN marked m ON m.item_id = q.id
		ORDER BY q.id`,
		ct, difficulty, topic, userID, count,
	)
	if err != nil {
		return nil, fmt.Errorf("claim questions: %w", err)
	}
	defer rows.Close()

	var questions []models.PoolQuestion
	for rows.Next() {
		var q models.PoolQuestion
		var choicesJSON []byte
		if err := rows.Scan(&q.ID, &q.SessionID, &q.ContentType, &q.Difficulty, &q.Topic,
			&q.QuestionText, &choicesJSON, &q.CorrectAnswerID, &q.Explanation, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan claimed question: %w", err)
		}
		if err := json.Unmarshal(choicesJSON, &q.Choices); err != nil {
			return nil, fmt.Errorf("decode choices for question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ClaimPassages atomically claims up to count unused passages for userID,
// then loads each passage's nested questions.
func (s *Store) ClaimPassages(ctx context.Context, difficulty models.Difficulty, topic string, count int, userID int64) ([]models.PoolPassage, error) {
	rows, err := s.db.QueryContext(ctx,
		`WITH candidates AS (
			SELECT id FROM pool_passages
			WHERE difficulty = $1
			  AND ($2 = '' OR topic = $2)
			  AND NOT EXISTS (
				SELECT 1 FROM pool_item_usages u
				WHERE u.item_kind = 'passage' AND u.item_id = pool_passages.id AND u.user_id = $3
			  )
			ORDER BY id
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		), marked AS (
			INSERT INTO pool_item_usages (item_kind, item_id, user_id)
			SELECT 'passage', id, $3 FROM candidates
			ON CONFLICT (item_kind, item_id, user_id) DO NOTHING
			RETURNING item_id
		)
		SELECT p.id, p.session_id, p.difficulty, p.topic, p.title, p.passage_text, p.created_at
		FROM pool_passages p
		JOIN marked m ON m.item_id = p.id
		ORDER BY p.id`,
		difficulty, topic, userID, count,
	)
	if err != nil {
		return nil, fmt.Errorf("claim passages: %w", err)
	}
	defer rows.Close()

	var passages []models.PoolPassage
	var ids []int64
	for rows.Next() {
		var p models.PoolPassage
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Difficulty, &p.Topic, &p.Title, &p.PassageText, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan claimed passage: %w", err)
		}
		passages = append(passages, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, nil
	}

	byPassage, err := s.loadPassageQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range passages {
		passages[i].Questions = byPassage[passages[i].ID]
	}
	return passages, nil
}

// ClaimPrompts atomically claims up to count unused writing prompts for
// userID. Writing prompts have no difficulty dimension.
func (s *Store) ClaimPrompts(ctx context.Context, count int, userID int64) ([]models.PoolPrompt, error) {
	rows, err := s.db.QueryContext(ctx,
		`WITH candidates AS (
			SELECT id FROM pool_prompts
			WHERE NOT EXISTS (
				SELECT 1 FROM pool_item_usages u
				WHERE u.item_kind = 'prompt' AND u.item_id = pool_prompts.id AND u.user_id = $1
			)
			ORDER BY id
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		), marked AS (
			INSERT INTO pool_item_usages (item_kind, item_id, user_id)
			SELECT 'prompt', id, $1 FROM candidates
			ON CONFLICT (item_kind, item_id, user_id) DO NOTHING
			RETURNING item_id
		)
		SELECT p.id, p.session_id, p.prompt_text, p.created_at
		FROM pool_prompts p
		JOIN marked m ON m.item_id = p.id
		ORDER BY p.id`,
		userID, count,
	)
	if err != nil {
		return nil, fmt.Errorf("claim prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.PoolPrompt
	for rows.Next() {
		var p models.PoolPrompt
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PromptText, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan claimed prompt: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

func (s *Store) loadPassageQuestions(ctx context.Context, passageIDs []int64) (map[int64][]models.PassageQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT passage_id, id, position, question_text, choices, correct_answer_id, explanation
		 FROM pool_passage_questions
		 WHERE passage_id = ANY($1)
		 ORDER BY passage_id, position`,
		pq.Array(passageIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("load passage questions: %w", err)
	}
	defer rows.Close()

	byPassage := make(map[int64][]models.PassageQuestion)
	for rows.Next() {
		var passageID int64
		var q models.PassageQuestion
		var choicesJSON []byte
		if err := rows.Scan(&passageID, &q.ID, &q.Position, &q.QuestionText, &choicesJSON,
			&q.CorrectAnswerID, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan passage question: %w", err)
		}
		if err := json.Unmarshal(choicesJSON, &q.Choices); err != nil {
			return nil, fmt.Errorf("decode choices for passage question %d: %w", q.ID, err)
		}
		byPassage[passageID] = append(byPassage[passageID], q)
	}
	return byPassage, rows.Err()
}

// ── Inserting Generated Content ─────────────────────────

// InsertQuestions persists newly generated questions and returns them with
// assigned ids.
func (s *Store) InsertQuestions(ctx context.Context, sessionID int64, questions []models.PoolQuestion) ([]models.PoolQuestion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	out := make([]models.PoolQuestion, 0, len(questions))
	for _, q := range questions {
		choicesJSON, err := json.Marshal(q.Choices)
		if err != nil {
			return nil, fmt.Errorf("encode choices: %w", err)
		}
		q.SessionID = sessionID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO pool_questions
			 (session_id, content_type, difficulty, topic, question_text, choices, correct_answer_id, explanation)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			sessionID, q.ContentType, q.Difficulty, q.Topic, q.QuestionText, choicesJSON,
			q.CorrectAnswerID, q.Explanation,
		).Scan(&q.ID, &q.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert question: %w", err)
		}
		out = append(out, q)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// InsertPassages persists newly generated passages with their nested
// questions and returns them with assigned ids.
func (s *Store) InsertPassages(ctx context.Context, sessionID int64, passages []models.PoolPassage) ([]models.PoolPassage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	out := make([]models.PoolPassage, 0, len(passages))
	for _, p := range passages {
		p.SessionID = sessionID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO pool_passages (session_id, difficulty, topic, title, passage_text)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			sessionID, p.Difficulty, p.Topic, p.Title, p.PassageText,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert passage: %w", err)
		}

		for i := range p.Questions {
			q := &p.Questions[i]
			q.Position = i + 1
			choicesJSON, err := json.Marshal(q.Choices)
			if err != nil {
				return nil, fmt.Errorf("encode choices: %w", err)
			}
			err = tx.QueryRowContext(ctx,
				`INSERT INTO pool_passage_questions
				 (passage_id, position, question_text, choices, correct_answer_id, explanation)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 RETURNING id`,
				p.ID, q.Position, q.QuestionText, choicesJSON, q.CorrectAnswerID, q.Explanation,
			).Scan(&q.ID)
			if err != nil {
				return nil, fmt.Errorf("insert passage question: %w", err)
			}
		}
		out = append(out, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// InsertPrompts persists newly generated writing prompts and returns them
// with assigned ids.
func (s *Store) InsertPrompts(ctx context.Context, sessionID int64, prompts []models.PoolPrompt) ([]models.PoolPrompt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	out := make([]models.PoolPrompt, 0, len(prompts))
	for _, p := range prompts {
		p.SessionID = sessionID
		err := tx.QueryRowContext(ctx,
			`INSERT INTO pool_prompts (session_id, prompt_text)
			 VALUES ($1, $2)
			 RETURNING id, created_at`,
			sessionID, p.PromptText,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert prompt: %w", err)
		}
		out = append(out, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// MarkUsed records usage of the given items for userID. Safe to call for
// items already marked; the unique constraint absorbs duplicates.
func (s *Store) MarkUsed(ctx context.Context, kind models.ItemKind, itemIDs []int64, userID int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pool_item_usages (item_kind, item_id, user_id)
		 SELECT $1, unnest($2::bigint[]), $3
		 ON CONFLICT (item_kind, item_id, user_id) DO NOTHING`,
		kind, pq.Array(itemIDs), userID,
	)
	if err != nil {
		return fmt.Errorf("mark used: %w", err)
	}
	return nil
}

// ── Inventory ───────────────────────────────────────────

// CountInventory returns the total number of pool items for a content type
// and difficulty, regardless of per-user usage.
func (s *Store) CountInventory(ctx context.Context, ct models.ContentType, difficulty models.Difficulty) (int, error) {
	var query string
	var args []interface{}
	switch ct {
	case models.ContentReading:
		query = `SELECT COUNT(*) FROM pool_passages WHERE difficulty = $1`
		args = []interface{}{difficulty}
	case models.ContentWriting:
		query = `SELECT COUNT(*) FROM pool_prompts`
	default:
		query = `SELECT COUNT(*) FROM pool_questions WHERE content_type = $1 AND difficulty = $2`
		args = []interface{}{ct, difficulty}
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return count, nil
}

// Inventory returns per-bucket item counts for the admin stats endpoint.
func (s *Store) Inventory(ctx context.Context) ([]models.InventoryBucket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content_type, difficulty, COUNT(*) FROM pool_questions GROUP BY content_type, difficulty
		 UNION ALL
		 SELECT 'reading', difficulty, COUNT(*) FROM pool_passages GROUP BY difficulty
		 UNION ALL
		 SELECT 'writing', '', COUNT(*) FROM pool_prompts
		 ORDER BY 1, 2`,
	)
	if err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}
	defer rows.Close()

	var buckets []models.InventoryBucket
	for rows.Next() {
		var b models.InventoryBucket
		if err := rows.Scan(&b.ContentType, &b.Difficulty, &b.Total); err != nil {
			return nil, fmt.Errorf("scan inventory bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// ── Generation Sessions ─────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, ct models.ContentType, difficulty models.Difficulty) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO generation_sessions (content_type, difficulty, status)
		 VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING id`,
		ct, difficulty, models.SessionGenerating,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID int64, itemCount int, provider, model string, promptTokens, outputTokens int, timeMs int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE generation_sessions
		 SET status = $1, item_count = $2, provider = $3, model_used = $4,
		     prompt_tokens = $5, output_tokens = $6, generation_time_ms = $7, completed_at = NOW()
		 WHERE id = $8`,
		models.SessionCompleted, itemCount, provider, model, promptTokens, outputTokens, timeMs, sessionID,
	)
	return err
}

func (s *Store) FailSession(ctx context.Context, sessionID int64, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE generation_sessions SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`,
		models.SessionFailed, errMsg, sessionID,
	)
	return err
}
