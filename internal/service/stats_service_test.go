package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/google/uuid"
)

func TestStats_EmptyScopeIsZeroSafe(t *testing.T) {
	env := newDecisionEnv(t)
	svc := NewStatsService(env.batches)

	stats, err := svc.Get(context.Background(), nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if stats.TotalFiles != 0 || stats.ReviewRequired != 0 || stats.CompletedReviews != 0 {
		t.Errorf("counts = %+v, want all zero", stats)
	}
	if stats.ReviewPercentage != 0 {
		t.Errorf("percentage = %v, want 0 on empty scope", stats.ReviewPercentage)
	}
	for _, c := range batch.Categories() {
		if _, ok := stats.ByCategory[c]; !ok {
			t.Errorf("category %s missing from breakdown", c)
		}
	}
	for _, p := range batch.Priorities() {
		if _, ok := stats.ByPriority[p]; !ok {
			t.Errorf("priority %s missing from breakdown", p)
		}
	}
}

func TestStats_SessionScoping(t *testing.T) {
	env := newDecisionEnv(t)
	svc := NewStatsService(env.batches)

	sessionA, sessionB := uuid.New(), uuid.New()
	cat, prio := batch.CategoryPatientMatch, batch.PriorityMedium
	now := time.Now()

	seedFile(t, env, func(f *batch.File) {
		f.SessionID = sessionA
		f.ReviewCategory = &cat
		f.ReviewPriority = &prio
	})
	seedFile(t, env, func(f *batch.File) {
		f.SessionID = sessionA
		f.MatchingStatus = batch.MatchingMatched
		f.ProcessingStatus = batch.ProcessingCompleted
		f.ReviewedAt = &now
	})
	seedFile(t, env, func(f *batch.File) {
		f.SessionID = sessionB
	})

	stats, err := svc.Get(context.Background(), &sessionA)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if stats.TotalFiles != 2 {
		t.Errorf("total = %d, want 2", stats.TotalFiles)
	}
	if stats.ReviewRequired != 1 {
		t.Errorf("review required = %d, want 1", stats.ReviewRequired)
	}
	if stats.CompletedReviews != 1 {
		t.Errorf("completed = %d, want 1", stats.CompletedReviews)
	}
	if stats.ReviewPercentage != 50 {
		t.Errorf("percentage = %v, want 50", stats.ReviewPercentage)
	}
	if stats.ByCategory[batch.CategoryPatientMatch] != 1 {
		t.Errorf("patient_match count = %d, want 1", stats.ByCategory[batch.CategoryPatientMatch])
	}
	if stats.ByPriority[batch.PriorityHigh] != 0 {
		t.Errorf("high priority count = %d, want 0", stats.ByPriority[batch.PriorityHigh])
	}

	global, err := svc.Get(context.Background(), nil)
	if err != nil {
		t.Fatalf("Get global: %v", err)
	}
	if global.TotalFiles != 3 {
		t.Errorf("global total = %d, want 3", global.TotalFiles)
	}
}
