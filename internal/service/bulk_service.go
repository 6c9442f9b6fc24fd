package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/config"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BulkService auto-applies approve_match across a session's pending files
// above a confidence threshold. Failures are isolated and counted; one
// file's failure never aborts the remainder, and the coordinator does not
// retry failed files.
type BulkService struct {
	files     batch.Repository
	decisions *DecisionService
	auditSvc  *AuditService
	cfg       config.ReviewConfig
	log       *zap.Logger
}

func NewBulkService(files batch.Repository, decisions *DecisionService, auditSvc *AuditService, cfg config.ReviewConfig, log *zap.Logger) *BulkService {
	return &BulkService{
		files:     files,
		decisions: decisions,
		auditSvc:  auditSvc,
		cfg:       cfg,
		log:       log,
	}
}

// ApproveSession fans the eligible file set out over a bounded worker
// pool. Cancellation is honored between individual files; decisions
// already applied stay committed.
func (s *BulkService) ApproveSession(ctx context.Context, sessionID uuid.UUID, threshold float64, reviewedBy string) (*batch.BulkResult, error) {
	if threshold < 0 || threshold > 1 {
		return nil, &ValidationError{Fields: []string{"confidence_threshold must be within [0,1]"}}
	}
	if reviewedBy == "" {
		return nil, &ValidationError{Fields: []string{"reviewed_by is required"}}
	}

	if _, err := s.files.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	ids, err := s.files.ListBulkEligible(ctx, sessionID, threshold)
	if err != nil {
		return nil, err
	}

	result := &batch.BulkResult{ConfidenceThreshold: threshold}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan uuid.UUID)
	)

	workers := s.cfg.BulkWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) && len(ids) > 0 {
		workers = len(ids)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				// Cancelled between files: committed decisions stand,
				// the rest are simply not attempted.
				if ctx.Err() != nil {
					return
				}
				_, err := s.decisions.Apply(ctx, id, &batch.Decision{
					Kind:       batch.DecisionApproveMatch,
					ReviewedBy: reviewedBy,
					AdminNotes: "bulk approval",
				})
				mu.Lock()
				if err != nil {
					result.FailedCount++
				} else {
					result.ApprovedCount++
				}
				mu.Unlock()
				if err != nil {
					s.log.Warn("bulk approval failed for file",
						zap.String("batch_file_id", id.String()),
						zap.Error(err),
					)
				}
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case jobs <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ReviewedBy:   reviewedBy,
		Action:       string(domain.ActionBulkApprove),
		ResourceType: "batch_session",
		ResourceID:   sessionID.String(),
		Success:      true,
		Message:      bulkSummary(result),
	})

	s.log.Info("bulk approval finished",
		zap.String("session_id", sessionID.String()),
		zap.Float64("threshold", threshold),
		zap.Int("approved", result.ApprovedCount),
		zap.Int("failed", result.FailedCount),
	)

	return result, nil
}

func bulkSummary(r *batch.BulkResult) string {
	return fmt.Sprintf("approved %d, failed %d", r.ApprovedCount, r.FailedCount)
}
