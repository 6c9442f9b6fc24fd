// Package matcher produces ranked patient candidates for a parsed
// identity. The review engine consumes candidates as input; the scoring
// here also backs the manual-match patient search.
package matcher

import (
	"context"
	"sort"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
)

// Adapter ranks patient candidates for a parsed name/identifier, highest
// similarity first. Implementations may call out to an external matching
// service; the engine only depends on this interface.
type Adapter interface {
	Match(ctx context.Context, parsedName, parsedID string) ([]batch.SuggestedMatch, error)
}

// NameMatcher scores candidates against the patient registry using name
// similarity, with an exact medical-record-number hit pinned to 1.0.
type NameMatcher struct {
	patients patient.Repository
	// Candidates below this similarity are not suggested at all.
	MinSimilarity float64
	// Cap on suggestions per file.
	MaxCandidates int
}

func NewNameMatcher(patients patient.Repository) *NameMatcher {
	return &NameMatcher{
		patients:      patients,
		MinSimilarity: 0.30,
		MaxCandidates: 5,
	}
}

func (m *NameMatcher) Match(ctx context.Context, parsedName, parsedID string) ([]batch.SuggestedMatch, error) {
	registry, err := m.patients.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var out []batch.SuggestedMatch
	for _, p := range registry {
		score := Similarity(parsedName, p.FullName())
		if parsedID != "" && parsedID == p.MedicalRecordNumber {
			score = 1.0
		}
		if score < m.MinSimilarity {
			continue
		}
		out = append(out, batch.SuggestedMatch{
			PatientID:  p.ID,
			Similarity: score,
			Name:       p.FullName(),
		})
	}

	sortBySimilarity(out)
	if m.MaxCandidates > 0 && len(out) > m.MaxCandidates {
		out = out[:m.MaxCandidates]
	}
	return out, nil
}

// Rank scores a free-text query against a patient set, for manual-match
// search. Returns at most limit entries, highest similarity first; an
// empty result is not an error.
func Rank(query string, registry []*patient.Patient, limit int) []batch.SuggestedMatch {
	out := make([]batch.SuggestedMatch, 0, len(registry))
	for _, p := range registry {
		score := Similarity(query, p.FullName())
		if query != "" && query == p.MedicalRecordNumber {
			score = 1.0
		}
		if score <= 0 {
			continue
		}
		out = append(out, batch.SuggestedMatch{
			PatientID:  p.ID,
			Similarity: score,
			Name:       p.FullName(),
		})
	}

	sortBySimilarity(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortBySimilarity(ms []batch.SuggestedMatch) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].Similarity > ms[j].Similarity
	})
}
