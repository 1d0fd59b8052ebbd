package content

import (
	"testing"

	"github.com/ssat-prep/backend/internal/generator"
	"github.com/ssat-prep/backend/internal/models"
)

func TestKindFor(t *testing.T) {
	cases := map[models.ContentType]models.ContentKind{
		models.ContentQuantitative: models.KindQuestions,
		models.ContentAnalogy:      models.KindQuestions,
		models.ContentSynonym:      models.KindQuestions,
		models.ContentReading:      models.KindPassages,
		models.ContentWriting:      models.KindPrompts,
	}
	for ct, want := range cases {
		if got := KindFor(ct); got != want {
			t.Errorf("KindFor(%q) = %q, want %q", ct, got, want)
		}
	}
}

func TestPassagesFromPool_NestingPreserved(t *testing.T) {
	records := []models.PoolPassage{{
		ID:          42,
		Difficulty:  models.DifficultyMedium,
		Title:       "The Silk Road",
		PassageText: "For centuries, traders crossed the deserts of Central Asia.",
		Questions: []models.PassageQuestion{
			{ID: 1, Position: 1, QuestionText: "What is the main idea?", CorrectAnswerID: "A"},
			{ID: 2, Position: 2, QuestionText: "Which detail is stated?", CorrectAnswerID: "B"},
			{ID: 3, Position: 3, QuestionText: "What can be inferred?", CorrectAnswerID: "C"},
			{ID: 4, Position: 4, QuestionText: "What does the word mean?", CorrectAnswerID: "D"},
		},
	}}

	passages := PassagesFromPool(records)
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	p := passages[0]
	if p.ID != 42 || p.Title != "The Silk Road" {
		t.Errorf("passage identity not carried over: %+v", p)
	}
	if len(p.Questions) != 4 {
		t.Fatalf("expected 4 nested questions, got %d", len(p.Questions))
	}
	for i, q := range p.Questions {
		if q.ContentType != models.ContentReading {
			t.Errorf("question %d: expected reading content type, got %q", i+1, q.ContentType)
		}
		if q.Difficulty != models.DifficultyMedium {
			t.Errorf("question %d: expected passage difficulty inherited, got %q", i+1, q.Difficulty)
		}
	}
}

func TestPoolQuestionsFromParsed(t *testing.T) {
	parsed := []generator.Question{{
		QuestionText:    "ABUNDANT",
		Choices:         parsedChoices(),
		CorrectAnswerID: "C",
		Explanation:     "Plentiful is the closest synonym.",
	}}

	records := PoolQuestionsFromParsed(models.ContentSynonym, models.DifficultyHard, "nature", parsed)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ContentType != models.ContentSynonym || r.Difficulty != models.DifficultyHard || r.Topic != "nature" {
		t.Errorf("request dimensions not stamped onto record: %+v", r)
	}
	if len(r.Choices) != 5 || r.Choices[0].ChoiceID != "A" {
		t.Errorf("choices not converted: %+v", r.Choices)
	}
}

func TestPoolPassagesFromParsed_PositionsAssigned(t *testing.T) {
	parsed := []generator.Passage{{
		Title:       "Generated",
		PassageText: "Body.",
		Questions: []generator.Question{
			{QuestionText: "q1", Choices: parsedChoices(), CorrectAnswerID: "A", Explanation: "e"},
			{QuestionText: "q2", Choices: parsedChoices(), CorrectAnswerID: "B", Explanation: "e"},
			{QuestionText: "q3", Choices: parsedChoices(), CorrectAnswerID: "C", Explanation: "e"},
			{QuestionText: "q4", Choices: parsedChoices(), CorrectAnswerID: "D", Explanation: "e"},
		},
	}}

	records := PoolPassagesFromParsed(models.DifficultyEasy, "", parsed)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	for i, q := range records[0].Questions {
		if q.Position != i+1 {
			t.Errorf("question %d: expected position %d, got %d", i+1, i+1, q.Position)
		}
	}
}

func TestPromptsFromPool(t *testing.T) {
	prompts := PromptsFromPool([]models.PoolPrompt{{ID: 9, PromptText: "Describe a place you return to."}})
	if len(prompts) != 1 || prompts[0].ID != 9 {
		t.Errorf("unexpected result: %+v", prompts)
	}
}
