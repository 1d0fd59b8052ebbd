package content

import (
	"github.com/ssat-prep/backend/internal/generator"
	"github.com/ssat-prep/backend/internal/models"
)

// Converters between the three content representations: parsed LLM output,
// pool records, and the public response shapes. All pure; any shape
// violation is caught upstream by the parser or the database constraints.

// KindFor maps a content type to its response union variant.
func KindFor(ct models.ContentType) models.ContentKind {
	switch ct {
	case models.ContentReading:
		return models.KindPassages
	case models.ContentWriting:
		return models.KindPrompts
	default:
		return models.KindQuestions
	}
}

// ── Pool record → public shape ──────────────────────────

func QuestionsFromPool(records []models.PoolQuestion) []models.Question {
	out := make([]models.Question, 0, len(records))
	for _, r := range records {
		out = append(out, models.Question{
			ID:              r.ID,
			ContentType:     r.ContentType,
			Difficulty:      r.Difficulty,
			Topic:           r.Topic,
			QuestionText:    r.QuestionText,
			Choices:         r.Choices,
			CorrectAnswerID: r.CorrectAnswerID,
			Explanation:     r.Explanation,
		})
	}
	return out
}

func PassagesFromPool(records []models.PoolPassage) []models.Passage {
	out := make([]models.Passage, 0, len(records))
	for _, r := range records {
		p := models.Passage{
			ID:          r.ID,
			Difficulty:  r.Difficulty,
			Topic:       r.Topic,
			Title:       r.Title,
			PassageText: r.PassageText,
			Questions:   make([]models.Question, 0, len(r.Questions)),
		}
		for _, q := range r.Questions {
			p.Questions = append(p.Questions, models.Question{
				ID:              q.ID,
				ContentType:     models.ContentReading,
				Difficulty:      r.Difficulty,
				QuestionText:    q.QuestionText,
				Choices:         q.Choices,
				CorrectAnswerID: q.CorrectAnswerID,
				Explanation:     q.Explanation,
			})
		}
		out = append(out, p)
	}
	return out
}

func PromptsFromPool(records []models.PoolPrompt) []models.Prompt {
	out := make([]models.Prompt, 0, len(records))
	for _, r := range records {
		out = append(out, models.Prompt{ID: r.ID, PromptText: r.PromptText})
	}
	return out
}

// ── Parsed LLM output → pool record ─────────────────────

func PoolQuestionsFromParsed(ct models.ContentType, difficulty models.Difficulty, topic string, parsed []generator.Question) []models.PoolQuestion {
	out := make([]models.PoolQuestion, 0, len(parsed))
	for _, q := range parsed {
		out = append(out, models.PoolQuestion{
			ContentType:     ct,
			Difficulty:      difficulty,
			Topic:           topic,
			QuestionText:    q.QuestionText,
			Choices:         choicesFromParsed(q.Choices),
			CorrectAnswerID: q.CorrectAnswerID,
			Explanation:     q.Explanation,
		})
	}
	return out
}

func PoolPassagesFromParsed(difficulty models.Difficulty, topic string, parsed []generator.Passage) []models.PoolPassage {
	out := make([]models.PoolPassage, 0, len(parsed))
	for _, p := range parsed {
		record := models.PoolPassage{
			Difficulty:  difficulty,
			Topic:       topic,
			Title:       p.Title,
			PassageText: p.PassageText,
			Questions:   make([]models.PassageQuestion, 0, len(p.Questions)),
		}
		for i, q := range p.Questions {
			record.Questions = append(record.Questions, models.PassageQuestion{
				Position:        i + 1,
				QuestionText:    q.QuestionText,
				Choices:         choicesFromParsed(q.Choices),
				CorrectAnswerID: q.CorrectAnswerID,
				Explanation:     q.Explanation,
			})
		}
		out = append(out, record)
	}
	return out
}

func PoolPromptsFromParsed(parsed []generator.Prompt) []models.PoolPrompt {
	out := make([]models.PoolPrompt, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, models.PoolPrompt{PromptText: p.PromptText})
	}
	return out
}

func choicesFromParsed(parsed []generator.Choice) []models.Choice {
	out := make([]models.Choice, 0, len(parsed))
	for _, c := range parsed {
		out = append(out, models.Choice{ChoiceID: c.ID, Text: c.Text})
	}
	return out
}
