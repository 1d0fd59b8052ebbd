package generator

import (
	"strings"
	"testing"

	"github.com/ssat-prep/backend/internal/models"
)

func TestAllQuestionTypesHaveRules(t *testing.T) {
	for _, ct := range []models.ContentType{models.ContentQuantitative, models.ContentAnalogy, models.ContentSynonym} {
		if questionTypeRules[ct] == "" {
			t.Errorf("content type %q has no question rules defined", ct)
		}
	}
}

func TestAllDifficultiesHaveGuidance(t *testing.T) {
	for d := range models.ValidDifficulties {
		if difficultyGuidance[d] == "" {
			t.Errorf("difficulty %q has no guidance defined", d)
		}
	}
}

func TestQuestionSystemPrompt(t *testing.T) {
	prompt := QuestionSystemPrompt(models.ContentQuantitative)

	required := []string{"SSAT", "5 choices", "A through E", "JSON", "EXPLANATIONS"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("question system prompt missing keyword %q", keyword)
		}
	}
}

func TestPassageSystemPrompt(t *testing.T) {
	prompt := PassageSystemPrompt()

	required := []string{"SSAT", "exactly 4 per passage", "Main idea", "Inference", "Never copy the passage body"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("passage system prompt missing keyword %q", keyword)
		}
	}
}

func TestWritingSystemPrompt(t *testing.T) {
	prompt := WritingSystemPrompt()

	required := []string{"SSAT", "writing", "JSON"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("writing system prompt missing keyword %q", keyword)
		}
	}
}

func TestBuildQuestionUserPrompt(t *testing.T) {
	prompt := BuildQuestionUserPrompt(models.ContentAnalogy, models.DifficultyMedium, "", 6)

	required := []string{"6", "analogy", "Medium", "correct_answer_id", "choices"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("question user prompt missing keyword %q", keyword)
		}
	}
}

func TestBuildQuestionUserPrompt_Topic(t *testing.T) {
	prompt := BuildQuestionUserPrompt(models.ContentQuantitative, models.DifficultyHard, "fractions", 3)
	if !strings.Contains(prompt, "fractions") {
		t.Error("topic not included in user prompt")
	}

	noTopic := BuildQuestionUserPrompt(models.ContentQuantitative, models.DifficultyHard, "", 3)
	if strings.Contains(noTopic, "Topic focus") {
		t.Error("topic line present without a topic")
	}
}

func TestBuildPassageUserPrompt(t *testing.T) {
	prompt := BuildPassageUserPrompt(models.DifficultyEasy, "", 2)

	required := []string{"2", "reading passages", "exactly 4 comprehension questions", "passage_text"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("passage user prompt missing keyword %q", keyword)
		}
	}
}

func TestBuildWritingUserPrompt(t *testing.T) {
	prompt := BuildWritingUserPrompt("", 1)

	required := []string{"1", "writing prompts", "prompt_text"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("writing user prompt missing keyword %q", keyword)
		}
	}
}
