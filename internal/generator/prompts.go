package generator

import (
	"fmt"
	"strings"

	"github.com/ssat-prep/backend/internal/models"
)

var questionTypeRules = map[models.ContentType]string{
	models.ContentQuantitative: `
QUESTION RULES (Quantitative):
- Each question tests one middle/upper-level SSAT math concept: arithmetic, fractions, decimals, percents, ratios, basic algebra, geometry, or data interpretation
- The question must be solvable without a calculator in under 90 seconds
- Numbers should be chosen so exactly one choice is correct; wrong choices reflect common computational errors
- Do NOT reuse the same numbers or scenario across questions in a batch`,

	models.ContentAnalogy: `
QUESTION RULES (Analogy):
- Format: "Word is to word as" with five completion pairs
- The stem pair must exhibit exactly one clear relationship: synonym, antonym, part/whole, category/member, cause/effect, worker/tool, degree, or function
- The correct choice replicates the stem relationship in the same direction
- Wrong choices use related words with a DIFFERENT or reversed relationship`,

	models.ContentSynonym: `
QUESTION RULES (Synonym):
- The stem is a single capitalized word at SSAT level
- The correct choice is the closest in meaning to the stem word
- Wrong choices include: a near-miss from the same semantic field, a word that sounds similar, an antonym, and an unrelated word
- Vary parts of speech across the batch`,
}

var difficultyGuidance = map[models.Difficulty]string{
	models.DifficultyEasy:   "Target grade 6-7 ability. One plausible distractor; the rest clearly wrong on inspection.",
	models.DifficultyMedium: "Target grade 8-9 ability. Two plausible distractors requiring actual work to eliminate.",
	models.DifficultyHard:   "Target grade 10-11 ability. Three plausible distractors; subtle distinctions decide the answer.",
}

func QuestionSystemPrompt(ct models.ContentType) string {
	return fmt.Sprintf(`You are an expert SSAT test-prep content author. You write %s questions indistinguishable in style and rigor from official SSAT practice material.

ANSWER CHOICES:
- Exactly 5 choices labeled A through E per question
- Exactly ONE correct answer per question
- Vary the position of the correct answer across A-E; do not cluster correct answers

EXPLANATIONS:
- 2-4 sentences showing why the correct answer is correct and, briefly, why the strongest distractor fails

You must respond with valid JSON only. No markdown, no explanation outside the JSON.`, displayName(ct))
}

func BuildQuestionUserPrompt(ct models.ContentType, difficulty models.Difficulty, topic string, count int) string {
	rules := questionTypeRules[ct]

	topicLine := ""
	if topic != "" {
		topicLine = fmt.Sprintf("Topic focus: %s\n", topic)
	}

	return fmt.Sprintf(`Generate %d SSAT %s questions.

Difficulty: %s
%s%s

%s

Respond with this exact JSON structure:
{
  "questions": [
    {
      "question_text": "...",
      "choices": [
        {"id": "A", "text": "..."},
        {"id": "B", "text": "..."},
        {"id": "C", "text": "..."},
        {"id": "D", "text": "..."},
        {"id": "E", "text": "..."}
      ],
      "correct_answer_id": "B",
      "explanation": "..."
    }
  ]
}

Requirements:
- Each question must cover different material — no two questions in the batch about the same fact or number pattern
- The correct answer position distribution across the batch should be roughly uniform`,
		count, displayName(ct), string(difficulty), topicLine,
		difficultyGuidance[difficulty], rules)
}

func PassageSystemPrompt() string {
	return `You are an expert SSAT test-prep content author. You write reading comprehension passages with comprehension questions indistinguishable from official SSAT practice material.

PASSAGES:
- 250-350 words, age-appropriate for grades 6-11
- Vary genre across batches: narrative fiction, natural science, social studies, biography, poetry commentary
- Self-contained: no outside knowledge required to answer the questions

QUESTIONS (exactly 4 per passage):
1. Main idea — correct answer captures the central point without overreaching
2. Supporting detail — correct answer restates a specific stated fact
3. Inference — correct answer follows logically without being stated
4. Vocabulary-in-context or author's purpose

ANSWER CHOICES:
- Exactly 5 choices labeled A through E per question
- Exactly ONE correct answer per question
- Wrong answers use classic distractor types: distortion, too broad, too narrow, out of scope

The question text must stand alone as a question ABOUT the passage. Never copy the passage body into a question.

You must respond with valid JSON only. No markdown, no explanation outside the JSON.`
}

func BuildPassageUserPrompt(difficulty models.Difficulty, topic string, count int) string {
	topicLine := ""
	if topic != "" {
		topicLine = fmt.Sprintf("Topic focus: %s\n", topic)
	}

	return fmt.Sprintf(`Generate %d SSAT reading passages, each with exactly 4 comprehension questions.

Difficulty: %s
%s%s

Respond with this exact JSON structure:
{
  "passages": [
    {
      "title": "...",
      "passage_text": "... (250-350 words) ...",
      "questions": [
        {
          "question_text": "...",
          "choices": [
            {"id": "A", "text": "..."},
            {"id": "B", "text": "..."},
            {"id": "C", "text": "..."},
            {"id": "D", "text": "..."},
            {"id": "E", "text": "..."}
          ],
          "correct_answer_id": "A",
          "explanation": "..."
        }
      ]
    }
  ]
}

Requirements:
- Each passage covers a different subject and genre
- Exactly 4 questions per passage, covering the four question roles in the system prompt
- Vary the position of correct answers across A-E`,
		count, string(difficulty), topicLine, difficultyGuidance[difficulty])
}

func WritingSystemPrompt() string {
	return `You are an expert SSAT test-prep content author. You write creative and personal essay writing prompts matching the official SSAT writing sample section.

PROMPT RULES:
- One to two sentences, open-ended, answerable from any student's personal experience or imagination
- No prompts requiring specialized knowledge, current events, or mature themes
- Each prompt should invite a story or reflective essay with a clear arc

You must respond with valid JSON only. No markdown, no explanation outside the JSON.`
}

func BuildWritingUserPrompt(topic string, count int) string {
	topicLine := ""
	if topic != "" {
		topicLine = fmt.Sprintf("\nTheme focus: %s", topic)
	}

	return fmt.Sprintf(`Generate %d SSAT writing prompts.%s

Respond with this exact JSON structure:
{
  "prompts": [
    {"prompt_text": "..."}
  ]
}

Requirements:
- Each prompt must differ in theme and framing from the others in the batch`,
		count, topicLine)
}

func displayName(ct models.ContentType) string {
	return strings.ReplaceAll(string(ct), "_", " ")
}
