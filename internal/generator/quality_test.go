package generator

import (
	"testing"

	"github.com/ssat-prep/backend/internal/models"
)

func TestComputeStructuralScore_Valid(t *testing.T) {
	q := validQuestion("C")
	score := ComputeStructuralScore(q, models.ContentQuantitative)
	if !score.OK() {
		t.Errorf("expected passing score, got %+v", score)
	}
}

func TestComputeStructuralScore_SynonymBounds(t *testing.T) {
	q := validQuestion("A")
	q.QuestionText = "ABUNDANT"
	if score := ComputeStructuralScore(q, models.ContentSynonym); !score.QuestionLengthOK {
		t.Errorf("single-word synonym stem should pass, got %+v", score)
	}

	q.QuestionText = "If 3x + 5 = 20, what is the value of x?"
	if score := ComputeStructuralScore(q, models.ContentSynonym); score.QuestionLengthOK {
		t.Error("full sentence should fail synonym stem bounds")
	}

	q.QuestionText = "GO AWAY"
	if score := ComputeStructuralScore(q, models.ContentSynonym); score.QuestionLengthOK {
		t.Error("multi-word stem should fail even when short")
	}

	q.QuestionText = "INCOMPREHENSIBILITY"
	if score := ComputeStructuralScore(q, models.ContentSynonym); !score.QuestionLengthOK {
		t.Error("long single word within bounds should pass")
	}
}

func TestComputeStructuralScore_ThinExplanation(t *testing.T) {
	q := validQuestion("B")
	q.Explanation = "Because."
	if score := ComputeStructuralScore(q, models.ContentQuantitative); score.ExplanationSubstantive {
		t.Error("one-word explanation should fail")
	}
}

func TestAnswerDistributionSkewed(t *testing.T) {
	skewed := make([]Question, 10)
	for i := range skewed {
		skewed[i] = validQuestion("C")
	}
	if !AnswerDistributionSkewed(skewed) {
		t.Error("all-C batch should be flagged as skewed")
	}

	uniform := make([]Question, 10)
	for i, id := range []string{"A", "B", "C", "D", "E", "A", "B", "C", "D", "E"} {
		uniform[i] = validQuestion(id)
	}
	if AnswerDistributionSkewed(uniform) {
		t.Error("uniform batch should not be flagged")
	}
}

func TestAnswerDistributionSkewed_SmallBatch(t *testing.T) {
	small := []Question{validQuestion("A"), validQuestion("A")}
	if AnswerDistributionSkewed(small) {
		t.Error("batches under five questions should never be flagged")
	}
}
