// Package review derives the (category, priority) tag for batch files
// whose matching outcome needs a human decision.
package review

import (
	"strings"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/config"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
)

type Classifier struct {
	cfg config.ReviewConfig
}

func NewClassifier(cfg config.ReviewConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify derives the review tag for a file. It is a pure function over
// the file's fields; the caller persists the result.
//
// Rules, first match wins:
//  1. missing parsed identity          → parsing_error / high
//  2. processing error                 → processing_error / high
//  3. confidence < low threshold       → patient_match / medium
//  4. top-two similarity near-tie      → patient_match / medium
//  5. confidence below auto-approve    → patient_match / low
//  6. confidence ≥ auto-approve, unambiguous → not a review case (ok=false);
//     such files are auto-resolved at intake and never enter the engine
//  7. anything else                    → other / medium
func (c *Classifier) Classify(f *batch.File) (batch.Classification, bool) {
	if isBlank(f.ParsedPatientID) || isBlank(f.ParsedPatientName) {
		return batch.Classification{Category: batch.CategoryParsingError, Priority: batch.PriorityHigh}, true
	}

	if f.ProcessingStatus == batch.ProcessingError {
		return batch.Classification{Category: batch.CategoryProcessingError, Priority: batch.PriorityHigh}, true
	}

	conf, scored := f.Confidence()
	if scored && conf < c.cfg.LowConfidence {
		return batch.Classification{Category: batch.CategoryPatientMatch, Priority: batch.PriorityMedium}, true
	}

	if c.isNearTie(f.SuggestedMatches) {
		return batch.Classification{Category: batch.CategoryPatientMatch, Priority: batch.PriorityMedium}, true
	}

	if scored && conf < c.cfg.AutoApprove {
		return batch.Classification{Category: batch.CategoryPatientMatch, Priority: batch.PriorityLow}, true
	}

	if scored && conf >= c.cfg.AutoApprove {
		return batch.Classification{}, false
	}

	// Unscored but structurally fine; an admin still has to look at it.
	return batch.Classification{Category: batch.CategoryOther, Priority: batch.PriorityMedium}, true
}

// isNearTie reports whether the two best candidates are too close to call.
func (c *Classifier) isNearTie(matches []batch.SuggestedMatch) bool {
	if len(matches) < 2 {
		return false
	}
	return matches[0].Similarity-matches[1].Similarity < c.cfg.TieGap
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
