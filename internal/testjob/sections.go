package testjob

import (
	"errors"
	"fmt"

	"github.com/ssat-prep/backend/internal/models"
)

// ErrInvalidStart rejects a malformed start request before a job is
// registered.
var ErrInvalidStart = errors.New("invalid start request")

// Default per-section unit counts for a generated practice test. Reading
// counts passages and writing counts prompts; everything else counts
// questions.
var defaultCounts = map[models.ContentType]int{
	models.ContentQuantitative: 10,
	models.ContentAnalogy:      10,
	models.ContentSynonym:      10,
	models.ContentReading:      2,
	models.ContentWriting:      1,
}

// Official-format counts mirror the published SSAT section sizes:
// 25 quantitative, a 30-question verbal section split between synonyms
// and analogies, reading passages, and one writing sample.
var officialCounts = map[models.ContentType]int{
	models.ContentQuantitative: 25,
	models.ContentAnalogy:      15,
	models.ContentSynonym:      15,
	models.ContentReading:      2,
	models.ContentWriting:      1,
}

var sectionInstructions = map[models.ContentType]string{
	models.ContentQuantitative: "Solve each problem and select the best answer from the choices given.",
	models.ContentAnalogy:      "Select the answer choice that best completes the analogy.",
	models.ContentSynonym:      "Select the word whose meaning is closest to the word in capital letters.",
	models.ContentReading:      "Read each passage carefully and answer the questions that follow it.",
	models.ContentWriting:      "Write a response to the prompt below. Plan before you write.",
}

// resolveSections validates and deduplicates the requested set while
// preserving request order. An empty include list means all sections.
func resolveSections(req models.StartTestRequest) ([]models.ContentType, error) {
	requested := req.IncludeSections
	if len(requested) == 0 {
		requested = []models.ContentType{
			models.ContentQuantitative, models.ContentAnalogy, models.ContentSynonym,
			models.ContentReading, models.ContentWriting,
		}
	}

	seen := make(map[models.ContentType]bool, len(requested))
	var sections []models.ContentType
	for _, ct := range requested {
		if !models.ValidContentTypes[ct] {
			return nil, fmt.Errorf("%w: unknown section %q", ErrInvalidStart, ct)
		}
		if seen[ct] {
			continue
		}
		seen[ct] = true
		sections = append(sections, ct)
	}
	return sections, nil
}

// sectionCounts picks the unit count per section: custom overrides win,
// then official or default sizes. Custom counts are clamped to the
// per-type bound rather than rejected.
func sectionCounts(sections []models.ContentType, custom map[models.ContentType]int, official bool) map[models.ContentType]int {
	base := defaultCounts
	if official {
		base = officialCounts
	}

	counts := make(map[models.ContentType]int, len(sections))
	for _, ct := range sections {
		count := base[ct]
		if c, ok := custom[ct]; ok && c > 0 {
			count = c
		}
		if max := models.MaxCountFor(ct); count > max {
			count = max
		}
		counts[ct] = count
	}
	return counts
}
