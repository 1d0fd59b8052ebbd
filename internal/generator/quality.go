package generator

import (
	"strings"

	"github.com/ssat-prep/backend/internal/models"
)

// StructuralScore holds the individual structural compliance checks for a
// single generated question.
type StructuralScore struct {
	QuestionLengthOK       bool
	AllChoicesInRange      bool
	ExplanationSubstantive bool
}

func (s StructuralScore) OK() bool {
	return s.QuestionLengthOK && s.AllChoicesInRange && s.ExplanationSubstantive
}

// Per-type question text bounds. Synonyms are a single capitalized word,
// analogies a short stem, quantitative a full problem statement.
var questionLengthBounds = map[models.ContentType][2]int{
	models.ContentQuantitative: {20, 600},
	models.ContentAnalogy:      {10, 200},
	models.ContentSynonym:      {2, 25},
}

// ComputeStructuralScore evaluates structural compliance for a single
// question.
func ComputeStructuralScore(q Question, ct models.ContentType) StructuralScore {
	qLen := len(q.QuestionText)
	bounds, ok := questionLengthBounds[ct]
	if !ok {
		bounds = [2]int{2, 600}
	}
	lengthOK := qLen >= bounds[0] && qLen <= bounds[1]
	if ct == models.ContentSynonym && strings.Contains(strings.TrimSpace(q.QuestionText), " ") {
		// A synonym stem is one word; anything sentence-shaped is a
		// malformed generation however short it is.
		lengthOK = false
	}

	choicesOK := true
	for _, c := range q.Choices {
		textLen := len(c.Text)
		if textLen < 1 || textLen > 200 {
			choicesOK = false
		}
	}

	return StructuralScore{
		QuestionLengthOK:       lengthOK,
		AllChoicesInRange:      choicesOK,
		ExplanationSubstantive: len(q.Explanation) >= 20,
	}
}

// AnswerDistributionSkewed reports whether one answer position dominates a
// batch. Models drift toward favorite letters; a skewed batch makes the
// correct answer guessable. Batches under five questions are too small to
// judge.
func AnswerDistributionSkewed(questions []Question) bool {
	if len(questions) < 5 {
		return false
	}
	counts := make(map[string]int)
	for _, q := range questions {
		counts[q.CorrectAnswerID]++
	}
	for _, n := range counts {
		if n*100 > len(questions)*60 {
			return true
		}
	}
	return false
}
