package batch

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestParseKind(t *testing.T) {
	for _, k := range DecisionKinds() {
		got, err := ParseKind(string(k))
		if err != nil {
			t.Errorf("ParseKind(%q): %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %q", k, got)
		}
	}

	for _, s := range []string{"", "approve", "APPROVE_MATCH", "archive_file"} {
		_, err := ParseKind(s)
		if !errors.Is(err, ErrUnsupportedDecision) {
			t.Errorf("ParseKind(%q) err = %v, want ErrUnsupportedDecision", s, err)
		}
	}
}

func TestProcessingStatusIsTerminal(t *testing.T) {
	terminal := map[ProcessingStatus]bool{
		ProcessingPending:   false,
		ProcessingError:     false,
		ProcessingCompleted: true,
		ProcessingSkipped:   true,
		ProcessingRejected:  true,
		ProcessingDeleted:   true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestFileNeedsReview(t *testing.T) {
	tests := []struct {
		name       string
		matching   MatchingStatus
		processing ProcessingStatus
		want       bool
	}{
		{"pending review case", MatchingReviewRequired, ProcessingPending, true},
		{"processing error always needs review", MatchingMatched, ProcessingError, true},
		{"already matched", MatchingMatched, ProcessingPending, false},
		{"review case already completed", MatchingReviewRequired, ProcessingCompleted, false},
		{"review case skipped", MatchingReviewRequired, ProcessingSkipped, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &File{MatchingStatus: tt.matching, ProcessingStatus: tt.processing}
			if got := f.NeedsReview(); got != tt.want {
				t.Errorf("NeedsReview() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileTopMatchAndConfidence(t *testing.T) {
	f := &File{}
	if f.TopMatch() != nil {
		t.Error("TopMatch on empty suggestions should be nil")
	}
	if _, ok := f.Confidence(); ok {
		t.Error("Confidence on unscored file should report ok=false")
	}

	first := SuggestedMatch{PatientID: uuid.New(), Similarity: 0.9, Name: "John Doe"}
	f.SuggestedMatches = []SuggestedMatch{first, {PatientID: uuid.New(), Similarity: 0.5, Name: "Jon Do"}}
	conf := 0.9
	f.MatchingConfidence = &conf

	if top := f.TopMatch(); top == nil || top.PatientID != first.PatientID {
		t.Errorf("TopMatch = %+v, want the first suggestion", top)
	}
	if got, ok := f.Confidence(); !ok || got != 0.9 {
		t.Errorf("Confidence = %v, %v; want 0.9, true", got, ok)
	}
}

func TestEnumValidity(t *testing.T) {
	for _, p := range Priorities() {
		if !p.IsValid() {
			t.Errorf("priority %s reported invalid", p)
		}
	}
	if ReviewPriority("urgent").IsValid() {
		t.Error("unknown priority reported valid")
	}

	for _, c := range Categories() {
		if !c.IsValid() {
			t.Errorf("category %s reported invalid", c)
		}
	}
	if ReviewCategory("misc").IsValid() {
		t.Error("unknown category reported valid")
	}
}
