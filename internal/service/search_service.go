package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/matcher"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchService ranks the full patient registry against a free-text query,
// populating candidates for manual_match. Same similarity scoring as the
// matcher adapter.
type SearchService struct {
	patients patient.Repository
}

func NewSearchService(patients patient.Repository) *SearchService {
	return &SearchService{patients: patients}
}

// SearchPatients returns at most limit candidates, highest similarity
// first. No match is an empty slice, not an error.
func (s *SearchService) SearchPatients(ctx context.Context, query string, limit int) ([]batch.SuggestedMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []batch.SuggestedMatch{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	registry, err := s.patients.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading patient registry: %w", err)
	}

	matches := matcher.Rank(query, registry, limit)
	if matches == nil {
		matches = []batch.SuggestedMatch{}
	}
	return matches, nil
}
