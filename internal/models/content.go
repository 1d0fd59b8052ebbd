package models

import "time"

type ContentType string

const (
	ContentQuantitative ContentType = "quantitative"
	ContentAnalogy      ContentType = "analogy"
	ContentSynonym      ContentType = "synonym"
	ContentReading      ContentType = "reading"
	ContentWriting      ContentType = "writing"
)

var ValidContentTypes = map[ContentType]bool{
	ContentQuantitative: true,
	ContentAnalogy:      true,
	ContentSynonym:      true,
	ContentReading:      true,
	ContentWriting:      true,
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

type Role string

const (
	RoleFree    Role = "free"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// Per-type count bounds. Reading is bounded by passages (each passage
// carries a fixed set of 4 sub-questions), everything else by questions.
const (
	MaxQuestionCount    = 25
	MaxPassageCount     = 5
	MaxPromptCount      = 3
	QuestionsPerPassage = 4
)

// MaxCountFor returns the upper count bound for a content type.
func MaxCountFor(ct ContentType) int {
	switch ct {
	case ContentReading:
		return MaxPassageCount
	case ContentWriting:
		return MaxPromptCount
	default:
		return MaxQuestionCount
	}
}

// ── Requests ──────────────────────────────────────────────

// ContentRequest is the single-generation request after the handler has
// attached the caller's identity. Role and ForceLLM feed the one policy
// decision point in the content service.
type ContentRequest struct {
	ContentType ContentType `json:"content_type"`
	Difficulty  Difficulty  `json:"difficulty"`
	Count       int         `json:"count"`
	Topic       string      `json:"topic,omitempty"`

	UserID   int64 `json:"-"`
	Role     Role  `json:"-"`
	ForceLLM bool  `json:"-"`
}

// ── Pool Records ──────────────────────────────────────────

type ItemKind string

const (
	ItemKindQuestion ItemKind = "question"
	ItemKindPassage  ItemKind = "passage"
	ItemKindPrompt   ItemKind = "prompt"
)

type Choice struct {
	ChoiceID string `json:"choice_id"`
	Text     string `json:"text"`
}

type PoolQuestion struct {
	ID              int64       `json:"id"`
	SessionID       int64       `json:"session_id"`
	ContentType     ContentType `json:"content_type"`
	Difficulty      Difficulty  `json:"difficulty"`
	Topic           string      `json:"topic,omitempty"`
	QuestionText    string      `json:"question_text"`
	Choices         []Choice    `json:"choices"`
	CorrectAnswerID string      `json:"correct_answer_id"`
	Explanation     string      `json:"explanation"`
	CreatedAt       time.Time   `json:"created_at"`
}

type PassageQuestion struct {
	ID              int64    `json:"id"`
	Position        int      `json:"position"`
	QuestionText    string   `json:"question_text"`
	Choices         []Choice `json:"choices"`
	CorrectAnswerID string   `json:"correct_answer_id"`
	Explanation     string   `json:"explanation"`
}

type PoolPassage struct {
	ID          int64             `json:"id"`
	SessionID   int64             `json:"session_id"`
	Difficulty  Difficulty        `json:"difficulty"`
	Topic       string            `json:"topic,omitempty"`
	Title       string            `json:"title"`
	PassageText string            `json:"passage_text"`
	Questions   []PassageQuestion `json:"questions"`
	CreatedAt   time.Time         `json:"created_at"`
}

type PoolPrompt struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	PromptText string    `json:"prompt_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ── Generated Content (closed tagged union) ───────────────

type ContentKind string

const (
	KindQuestions ContentKind = "questions"
	KindPassages  ContentKind = "passages"
	KindPrompts   ContentKind = "prompts"
)

type ContentSource string

const (
	SourcePool  ContentSource = "pool"
	SourceLLM   ContentSource = "llm"
	SourceMixed ContentSource = "mixed"
)

type ContentMetadata struct {
	Source           ContentSource `json:"source"`
	Provider         string        `json:"provider,omitempty"`
	GenerationTimeMs int64         `json:"generation_time_ms"`
}

// GeneratedContent is the normalized output of one generation operation.
// Kind discriminates which of the three payload fields is populated;
// callers decode it exhaustively rather than probing field presence.
type GeneratedContent struct {
	Kind      ContentKind     `json:"kind"`
	Questions []Question      `json:"questions,omitempty"`
	Passages  []Passage       `json:"passages,omitempty"`
	Prompts   []Prompt        `json:"prompts,omitempty"`
	Metadata  ContentMetadata `json:"metadata"`
}

// Count returns the number of delivered units for the populated variant.
func (c *GeneratedContent) Count() int {
	switch c.Kind {
	case KindPassages:
		return len(c.Passages)
	case KindPrompts:
		return len(c.Prompts)
	default:
		return len(c.Questions)
	}
}

// ── Public Response Shapes ────────────────────────────────

type Question struct {
	ID              int64       `json:"id"`
	ContentType     ContentType `json:"content_type"`
	Difficulty      Difficulty  `json:"difficulty"`
	Topic           string      `json:"topic,omitempty"`
	QuestionText    string      `json:"question_text"`
	Choices         []Choice    `json:"choices"`
	CorrectAnswerID string      `json:"correct_answer_id"`
	Explanation     string      `json:"explanation"`
}

// Passage keeps its sub-questions nested; they are never flattened into a
// standalone question list and passage text never leaks into question text.
type Passage struct {
	ID          int64      `json:"id"`
	Difficulty  Difficulty `json:"difficulty"`
	Topic       string     `json:"topic,omitempty"`
	Title       string     `json:"title"`
	PassageText string     `json:"passage_text"`
	Questions   []Question `json:"questions"`
}

type Prompt struct {
	ID         int64  `json:"id"`
	PromptText string `json:"prompt_text"`
}

// ── Generation Sessions (provenance) ──────────────────────

type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionGenerating SessionStatus = "generating"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

type GenerationSession struct {
	ID               int64         `json:"id"`
	ContentType      ContentType   `json:"content_type"`
	Difficulty       Difficulty    `json:"difficulty,omitempty"`
	Status           SessionStatus `json:"status"`
	ItemCount        int           `json:"item_count"`
	Provider         string        `json:"provider,omitempty"`
	ModelUsed        string        `json:"model_used,omitempty"`
	PromptTokens     int           `json:"prompt_tokens,omitempty"`
	OutputTokens     int           `json:"output_tokens,omitempty"`
	GenerationTimeMs int           `json:"generation_time_ms,omitempty"`
	ErrorMessage     *string       `json:"error_message,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
}

// ── Admin Stats ───────────────────────────────────────────

type InventoryBucket struct {
	ContentType ContentType `json:"content_type"`
	Difficulty  Difficulty  `json:"difficulty,omitempty"`
	Total       int         `json:"total"`
}

type PoolStatsResponse struct {
	Buckets []InventoryBucket `json:"buckets"`
	Total   int               `json:"total"`
}
