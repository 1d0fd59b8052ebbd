package testjob

import (
	"testing"

	"github.com/ssat-prep/backend/internal/models"
)

func TestResolveSections_DefaultsToAll(t *testing.T) {
	sections, err := resolveSections(models.StartTestRequest{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(sections) != 5 {
		t.Errorf("expected all 5 sections, got %d", len(sections))
	}
}

func TestResolveSections_DedupesPreservingOrder(t *testing.T) {
	sections, err := resolveSections(models.StartTestRequest{
		IncludeSections: []models.ContentType{
			models.ContentReading, models.ContentSynonym, models.ContentReading,
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	want := []models.ContentType{models.ContentReading, models.ContentSynonym}
	if len(sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(sections))
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Errorf("section %d: expected %q, got %q", i, want[i], sections[i])
		}
	}
}

func TestSectionCounts_OfficialFormat(t *testing.T) {
	sections := []models.ContentType{models.ContentQuantitative, models.ContentAnalogy, models.ContentSynonym}
	counts := sectionCounts(sections, nil, true)

	if counts[models.ContentQuantitative] != 25 {
		t.Errorf("expected 25 quantitative questions, got %d", counts[models.ContentQuantitative])
	}
	if counts[models.ContentAnalogy]+counts[models.ContentSynonym] != 30 {
		t.Errorf("expected verbal halves summing to 30, got %d + %d",
			counts[models.ContentAnalogy], counts[models.ContentSynonym])
	}
}

func TestSectionCounts_CustomOverridesClamped(t *testing.T) {
	sections := []models.ContentType{models.ContentReading, models.ContentSynonym}
	counts := sectionCounts(sections, map[models.ContentType]int{
		models.ContentReading: 100,
		models.ContentSynonym: 7,
	}, false)

	if counts[models.ContentReading] != models.MaxPassageCount {
		t.Errorf("expected reading clamped to %d, got %d", models.MaxPassageCount, counts[models.ContentReading])
	}
	if counts[models.ContentSynonym] != 7 {
		t.Errorf("expected custom synonym count 7, got %d", counts[models.ContentSynonym])
	}
}

func TestSectionInstructionsComplete(t *testing.T) {
	for ct := range models.ValidContentTypes {
		if sectionInstructions[ct] == "" {
			t.Errorf("content type %q has no section instructions", ct)
		}
	}
}
