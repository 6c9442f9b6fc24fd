package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/google/uuid"
)

// StatsService computes the read-only review snapshot. Safe for concurrent
// invocation at any time; no side effects.
type StatsService struct {
	files batch.Repository
}

func NewStatsService(files batch.Repository) *StatsService {
	return &StatsService{files: files}
}

// Get aggregates over one session, or all sessions when sessionID is nil.
// Breakdown maps always carry every enum member, and an empty scope yields
// a zero percentage rather than a division by zero.
func (s *StatsService) Get(ctx context.Context, sessionID *uuid.UUID) (*batch.Stats, error) {
	row, err := s.files.Stats(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("aggregating review stats: %w", err)
	}

	stats := &batch.Stats{
		TotalFiles:       row.TotalFiles,
		ReviewRequired:   row.ReviewRequired,
		CompletedReviews: row.CompletedReviews,
		ByCategory:       make(map[batch.ReviewCategory]int64, 4),
		ByPriority:       make(map[batch.ReviewPriority]int64, 3),
	}

	for _, c := range batch.Categories() {
		stats.ByCategory[c] = row.ByCategory[c]
	}
	for _, p := range batch.Priorities() {
		stats.ByPriority[p] = row.ByPriority[p]
	}

	if row.TotalFiles > 0 {
		stats.ReviewPercentage = float64(row.ReviewRequired) / float64(row.TotalFiles) * 100
	}

	return stats, nil
}
