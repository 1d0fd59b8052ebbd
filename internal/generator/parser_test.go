package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func validQuestion(correctID string) Question {
	choices := make([]Choice, 5)
	for j, id := range []string{"A", "B", "C", "D", "E"} {
		label := "incorrect"
		if id == correctID {
			label = "correct"
		}
		choices[j] = Choice{ID: id, Text: "the " + label + " choice " + id}
	}
	return Question{
		QuestionText:    "If 3x + 5 = 20, what is the value of x?",
		Choices:         choices,
		CorrectAnswerID: correctID,
		Explanation:     "Subtract 5 from both sides and divide by 3 to isolate x.",
	}
}

func validQuestionsJSON(count int) string {
	correctAnswers := []string{"A", "B", "C", "D", "E"}
	payload := struct {
		Questions []Question `json:"questions"`
	}{Questions: make([]Question, count)}

	for i := 0; i < count; i++ {
		payload.Questions[i] = validQuestion(correctAnswers[i%5])
	}

	data, _ := json.Marshal(payload)
	return string(data)
}

func validPassagesJSON(count int) string {
	payload := struct {
		Passages []Passage `json:"passages"`
	}{Passages: make([]Passage, count)}

	for i := 0; i < count; i++ {
		questions := make([]Question, 4)
		for j := range questions {
			q := validQuestion("B")
			q.QuestionText = fmt.Sprintf("Which statement best describes point %d of the passage?", j+1)
			questions[j] = q
		}
		payload.Passages[i] = Passage{
			Title:       fmt.Sprintf("The Migration of Monarchs %d", i+1),
			PassageText: strings.Repeat("Every autumn, monarch butterflies travel south across the continent. ", 10),
			Questions:   questions,
		}
	}

	data, _ := json.Marshal(payload)
	return string(data)
}

func TestParseQuestions_ValidJSON(t *testing.T) {
	questions, err := ParseQuestions(validQuestionsJSON(6))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(questions) != 6 {
		t.Errorf("expected 6 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if len(q.Choices) != 5 {
			t.Errorf("question %d: expected 5 choices, got %d", i+1, len(q.Choices))
		}
		if q.CorrectAnswerID == "" {
			t.Errorf("question %d: empty correct_answer_id", i+1)
		}
	}
}

func TestParseQuestions_CodeFenced(t *testing.T) {
	input := "```json\n" + validQuestionsJSON(2) + "\n```"

	questions, err := ParseQuestions(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(questions))
	}
}

func TestParseQuestions_InvalidJSON(t *testing.T) {
	if _, err := ParseQuestions("not json at all"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseQuestions_Empty(t *testing.T) {
	_, err := ParseQuestions(`{"questions": []}`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got: %v", err)
	}
}

func TestParseQuestions_WrongChoiceCount(t *testing.T) {
	q := validQuestion("A")
	q.Choices = q.Choices[:4]
	data, _ := json.Marshal(struct {
		Questions []Question `json:"questions"`
	}{Questions: []Question{q}})

	_, err := ParseQuestions(string(data))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got: %v", err)
	}
	if !strings.Contains(parseErr.Error(), "expected 5 choices") {
		t.Errorf("unexpected error detail: %v", parseErr)
	}
}

func TestParseQuestions_BadCorrectAnswerID(t *testing.T) {
	q := validQuestion("A")
	q.CorrectAnswerID = "F"
	data, _ := json.Marshal(struct {
		Questions []Question `json:"questions"`
	}{Questions: []Question{q}})

	_, err := ParseQuestions(string(data))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got: %v", err)
	}
}

func TestParsePassages_ValidJSON(t *testing.T) {
	passages, err := ParsePassages(validPassagesJSON(2))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	for i, p := range passages {
		if len(p.Questions) != 4 {
			t.Errorf("passage %d: expected 4 questions, got %d", i+1, len(p.Questions))
		}
	}
}

func TestParsePassages_WrongQuestionCount(t *testing.T) {
	var payload struct {
		Passages []Passage `json:"passages"`
	}
	json.Unmarshal([]byte(validPassagesJSON(1)), &payload)
	p := payload.Passages[0]
	p.Questions = p.Questions[:3]

	data, _ := json.Marshal(struct {
		Passages []Passage `json:"passages"`
	}{Passages: []Passage{p}})

	_, err := ParsePassages(string(data))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got: %v", err)
	}
	if !strings.Contains(parseErr.Error(), "expected 4 questions") {
		t.Errorf("unexpected error detail: %v", parseErr)
	}
}

func TestParsePassages_QuestionContainsPassageBody(t *testing.T) {
	var payload struct {
		Passages []Passage `json:"passages"`
	}
	json.Unmarshal([]byte(validPassagesJSON(1)), &payload)
	p := payload.Passages[0]
	p.Questions[0].QuestionText = p.PassageText

	data, _ := json.Marshal(struct {
		Passages []Passage `json:"passages"`
	}{Passages: []Passage{p}})

	_, err := ParsePassages(string(data))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got: %v", err)
	}
	if !strings.Contains(parseErr.Error(), "passage body") {
		t.Errorf("unexpected error detail: %v", parseErr)
	}
}

func TestParsePrompts_ValidJSON(t *testing.T) {
	input := `{"prompts": [{"prompt_text": "Write about a time you surprised yourself."}, {"prompt_text": "The door at the end of the hallway was always locked. Until today."}]}`

	prompts, err := ParsePrompts(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(prompts) != 2 {
		t.Errorf("expected 2 prompts, got %d", len(prompts))
	}
}

func TestParsePrompts_EmptyText(t *testing.T) {
	_, err := ParsePrompts(`{"prompts": [{"prompt_text": "  "}]}`)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got: %v", err)
	}
}
