package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parsed payload types. These are provider output after structural
// validation, before pool persistence or conversion to response shapes.

type Question struct {
	QuestionText    string   `json:"question_text"`
	Choices         []Choice `json:"choices"`
	CorrectAnswerID string   `json:"correct_answer_id"`
	Explanation     string   `json:"explanation"`
}

type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Passage struct {
	Title       string     `json:"title"`
	PassageText string     `json:"passage_text"`
	Questions   []Question `json:"questions"`
}

type Prompt struct {
	PromptText string `json:"prompt_text"`
}

// ParseError reports structural problems in a provider response. It is
// distinct from a JSON decode failure: the payload decoded but violated the
// content contract.
type ParseError struct {
	Errors []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("response validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseQuestions decodes and validates a standalone-question payload.
func ParseQuestions(responseBody string) ([]Question, error) {
	cleaned := stripCodeFences(responseBody)

	var payload struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	var errs []string
	if len(payload.Questions) == 0 {
		return nil, &ParseError{Errors: []string{"no questions in response"}}
	}
	for i, q := range payload.Questions {
		errs = append(errs, validateQuestion(q, fmt.Sprintf("question %d", i+1))...)
	}
	if len(errs) > 0 {
		return nil, &ParseError{Errors: errs}
	}

	return payload.Questions, nil
}

// ParsePassages decodes and validates a reading-passage payload. Every
// passage must carry exactly 4 questions; question text must be a question
// about the passage, never the passage body itself.
func ParsePassages(responseBody string) ([]Passage, error) {
	cleaned := stripCodeFences(responseBody)

	var payload struct {
		Passages []Passage `json:"passages"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	var errs []string
	if len(payload.Passages) == 0 {
		return nil, &ParseError{Errors: []string{"no passages in response"}}
	}
	for i, p := range payload.Passages {
		label := fmt.Sprintf("passage %d", i+1)
		if strings.TrimSpace(p.PassageText) == "" {
			errs = append(errs, label+": empty passage_text")
		}
		if strings.TrimSpace(p.Title) == "" {
			errs = append(errs, label+": empty title")
		}
		if len(p.Questions) != 4 {
			errs = append(errs, fmt.Sprintf("%s: expected 4 questions, got %d", label, len(p.Questions)))
			continue
		}
		for j, q := range p.Questions {
			qLabel := fmt.Sprintf("%s question %d", label, j+1)
			errs = append(errs, validateQuestion(q, qLabel)...)
			if p.PassageText != "" && strings.Contains(q.QuestionText, p.PassageText) {
				errs = append(errs, qLabel+": question_text contains the passage body")
			}
		}
	}
	if len(errs) > 0 {
		return nil, &ParseError{Errors: errs}
	}

	return payload.Passages, nil
}

// ParsePrompts decodes and validates a writing-prompt payload.
func ParsePrompts(responseBody string) ([]Prompt, error) {
	cleaned := stripCodeFences(responseBody)

	var payload struct {
		Prompts []Prompt `json:"prompts"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	var errs []string
	if len(payload.Prompts) == 0 {
		return nil, &ParseError{Errors: []string{"no prompts in response"}}
	}
	for i, p := range payload.Prompts {
		if strings.TrimSpace(p.PromptText) == "" {
			errs = append(errs, fmt.Sprintf("prompt %d: empty prompt_text", i+1))
		}
	}
	if len(errs) > 0 {
		return nil, &ParseError{Errors: errs}
	}

	return payload.Prompts, nil
}

var expectedChoiceIDs = []string{"A", "B", "C", "D", "E"}

var validChoiceIDs = map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true}

func validateQuestion(q Question, label string) []string {
	var errs []string

	if strings.TrimSpace(q.QuestionText) == "" {
		errs = append(errs, label+": empty question_text")
	}
	if len(q.Choices) != 5 {
		errs = append(errs, fmt.Sprintf("%s: expected 5 choices, got %d", label, len(q.Choices)))
		return errs
	}
	for j, c := range q.Choices {
		if c.ID != expectedChoiceIDs[j] {
			errs = append(errs, fmt.Sprintf("%s: choice %d has id %q, expected %q", label, j+1, c.ID, expectedChoiceIDs[j]))
		}
		if strings.TrimSpace(c.Text) == "" {
			errs = append(errs, fmt.Sprintf("%s: choice %s has empty text", label, c.ID))
		}
	}
	if !validChoiceIDs[q.CorrectAnswerID] {
		errs = append(errs, fmt.Sprintf("%s: invalid correct_answer_id %q", label, q.CorrectAnswerID))
	}
	if strings.TrimSpace(q.Explanation) == "" {
		errs = append(errs, label+": empty explanation")
	}

	return errs
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}
