package review

import (
	"testing"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/config"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/google/uuid"
)

func testConfig() config.ReviewConfig {
	return config.ReviewConfig{
		LowConfidence: 0.70,
		AutoApprove:   0.95,
		TieGap:        0.05,
		BulkWorkers:   4,
	}
}

func strp(s string) *string { return &s }

func floatp(f float64) *float64 { return &f }

func matches(sims ...float64) []batch.SuggestedMatch {
	out := make([]batch.SuggestedMatch, 0, len(sims))
	for _, s := range sims {
		out = append(out, batch.SuggestedMatch{PatientID: uuid.New(), Similarity: s, Name: "candidate"})
	}
	return out
}

func parsedFile() *batch.File {
	return &batch.File{
		ID:                uuid.New(),
		Filename:          "scan_0001.pdf",
		ParsedPatientID:   strp("MRN-1001"),
		ParsedPatientName: strp("John Doe"),
		ProcessingStatus:  batch.ProcessingPending,
		MatchingStatus:    batch.MatchingReviewRequired,
	}
}

func TestClassify_Rules(t *testing.T) {
	c := NewClassifier(testConfig())

	tests := []struct {
		name         string
		mutate       func(f *batch.File)
		wantCategory batch.ReviewCategory
		wantPriority batch.ReviewPriority
		wantReview   bool
	}{
		{
			name: "missing parsed name is a parsing error",
			mutate: func(f *batch.File) {
				f.ParsedPatientName = nil
				f.MatchingConfidence = floatp(0.99)
			},
			wantCategory: batch.CategoryParsingError,
			wantPriority: batch.PriorityHigh,
			wantReview:   true,
		},
		{
			name: "blank parsed id is a parsing error",
			mutate: func(f *batch.File) {
				f.ParsedPatientID = strp("   ")
			},
			wantCategory: batch.CategoryParsingError,
			wantPriority: batch.PriorityHigh,
			wantReview:   true,
		},
		{
			name: "processing error outranks confidence",
			mutate: func(f *batch.File) {
				f.ProcessingStatus = batch.ProcessingError
				f.MatchingConfidence = floatp(0.99)
				f.SuggestedMatches = matches(0.99)
			},
			wantCategory: batch.CategoryProcessingError,
			wantPriority: batch.PriorityHigh,
			wantReview:   true,
		},
		{
			name: "low confidence is a medium patient match",
			mutate: func(f *batch.File) {
				f.MatchingConfidence = floatp(0.65)
				f.SuggestedMatches = matches(0.65)
			},
			wantCategory: batch.CategoryPatientMatch,
			wantPriority: batch.PriorityMedium,
			wantReview:   true,
		},
		{
			name: "near-tie between top candidates is ambiguous",
			mutate: func(f *batch.File) {
				f.MatchingConfidence = floatp(0.96)
				f.SuggestedMatches = matches(0.96, 0.93)
			},
			wantCategory: batch.CategoryPatientMatch,
			wantPriority: batch.PriorityMedium,
			wantReview:   true,
		},
		{
			name: "mid confidence is a low priority patient match",
			mutate: func(f *batch.File) {
				f.MatchingConfidence = floatp(0.85)
				f.SuggestedMatches = matches(0.85)
			},
			wantCategory: batch.CategoryPatientMatch,
			wantPriority: batch.PriorityLow,
			wantReview:   true,
		},
		{
			name: "boundary at low threshold classifies as low priority",
			mutate: func(f *batch.File) {
				f.MatchingConfidence = floatp(0.70)
				f.SuggestedMatches = matches(0.70)
			},
			wantCategory: batch.CategoryPatientMatch,
			wantPriority: batch.PriorityLow,
			wantReview:   true,
		},
		{
			name: "high confidence single candidate is not a review case",
			mutate: func(f *batch.File) {
				f.MatchingConfidence = floatp(0.97)
				f.SuggestedMatches = matches(0.97)
			},
			wantReview: false,
		},
		{
			name: "high confidence with clear runner-up is not a review case",
			mutate: func(f *batch.File) {
				f.MatchingConfidence = floatp(0.97)
				f.SuggestedMatches = matches(0.97, 0.60)
			},
			wantReview: false,
		},
		{
			name:         "unscored file falls through to other",
			mutate:       func(f *batch.File) {},
			wantCategory: batch.CategoryOther,
			wantPriority: batch.PriorityMedium,
			wantReview:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := parsedFile()
			tt.mutate(f)

			cls, needsReview := c.Classify(f)
			if needsReview != tt.wantReview {
				t.Fatalf("needsReview = %v, want %v", needsReview, tt.wantReview)
			}
			if !tt.wantReview {
				return
			}
			if cls.Category != tt.wantCategory {
				t.Errorf("category = %s, want %s", cls.Category, tt.wantCategory)
			}
			if cls.Priority != tt.wantPriority {
				t.Errorf("priority = %s, want %s", cls.Priority, tt.wantPriority)
			}
		})
	}
}

func TestClassify_TieGap(t *testing.T) {
	c := NewClassifier(testConfig())

	t.Run("narrow gap is ambiguous", func(t *testing.T) {
		f := parsedFile()
		f.MatchingConfidence = floatp(0.97)
		f.SuggestedMatches = matches(0.97, 0.955)

		if _, needsReview := c.Classify(f); !needsReview {
			t.Error("gap below TieGap should flag a near-tie review")
		}
	})

	t.Run("wide gap is not", func(t *testing.T) {
		f := parsedFile()
		f.MatchingConfidence = floatp(0.97)
		f.SuggestedMatches = matches(0.97, 0.87)

		if _, needsReview := c.Classify(f); needsReview {
			t.Error("gap well past TieGap should not flag a near-tie review")
		}
	})
}
