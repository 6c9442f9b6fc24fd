package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/document"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) CreateSession(ctx context.Context, s *batch.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *BatchRepository) GetSession(ctx context.Context, id uuid.UUID) (*batch.Session, error) {
	var s batch.Session
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, batch.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *BatchRepository) CreateFiles(ctx context.Context, files []*batch.File) error {
	if len(files) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(files, 100).Error
}

func (r *BatchRepository) GetFile(ctx context.Context, id uuid.UUID) (*batch.File, error) {
	var f batch.File
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, batch.ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *BatchRepository) ListPending(ctx context.Context, q *batch.ListQuery) ([]*batch.File, error) {
	db := r.db.WithContext(ctx).Model(&batch.File{}).
		Where("(matching_status = ? AND processing_status = ?) OR processing_status = ?",
			batch.MatchingReviewRequired, batch.ProcessingPending, batch.ProcessingError)

	if q.SessionID != nil {
		db = db.Where("session_id = ?", *q.SessionID)
	}
	if q.Priority != nil {
		db = db.Where("review_priority = ?", *q.Priority)
	}
	if q.Category != nil {
		db = db.Where("review_category = ?", *q.Category)
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var files []*batch.File
	err := db.
		Order("CASE review_priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 3 END").
		Order("created_at ASC").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *BatchRepository) ListBulkEligible(ctx context.Context, sessionID uuid.UUID, threshold float64) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&batch.File{}).
		Where("session_id = ?", sessionID).
		Where("matching_status = ?", batch.MatchingReviewRequired).
		Where("processing_status = ?", batch.ProcessingPending).
		Where("matching_confidence >= ?", threshold).
		Order("matching_confidence DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ApplyDecision runs one decision's write set in a single transaction.
// The file row update is a compare-and-set on the version column; zero
// rows affected means a concurrent decision won and everything rolls back.
func (r *BatchRepository) ApplyDecision(ctx context.Context, effect *batch.DecisionEffect) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := fileUpdates(&effect.Update)

		res := tx.Model(&batch.File{}).
			Where("id = ? AND version = ?", effect.FileID, effect.Update.ExpectedVersion).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return batch.ErrDecisionConflict
		}

		if effect.CreatePatient != nil {
			if err := tx.Create(effect.CreatePatient).Error; err != nil {
				if isUniqueViolation(err) {
					return patient.ErrDuplicatePatient
				}
				return err
			}
		}

		if effect.CreateDocument != nil {
			if err := tx.Create(effect.CreateDocument).Error; err != nil {
				return err
			}
		}

		if effect.DeleteDocument != nil {
			if err := tx.Delete(&document.Document{}, "id = ?", *effect.DeleteDocument).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func fileUpdates(u *batch.FileUpdate) map[string]any {
	updates := map[string]any{
		"processing_status": u.ProcessingStatus,
		"matching_status":   u.MatchingStatus,
		"version":           gorm.Expr("version + 1"),
	}
	if u.PatientID != nil {
		updates["patient_id"] = *u.PatientID
	}
	if u.DocumentID != nil {
		updates["document_id"] = *u.DocumentID
	}
	if u.ClearDocumentRef {
		updates["document_id"] = nil
	}
	if u.ClearError {
		updates["error_message"] = nil
	}
	if u.ErrorMessage != nil {
		updates["error_message"] = *u.ErrorMessage
	}
	if u.ClearClassification {
		updates["review_priority"] = nil
		updates["review_category"] = nil
	}
	if u.ReviewedBy != nil {
		updates["reviewed_by"] = *u.ReviewedBy
	}
	if u.AdminNotes != nil {
		updates["admin_notes"] = *u.AdminNotes
	}
	if u.ReviewedAt != nil {
		updates["reviewed_at"] = *u.ReviewedAt
	}
	return updates
}

func (r *BatchRepository) Stats(ctx context.Context, sessionID *uuid.UUID) (*batch.StatsRow, error) {
	scoped := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&batch.File{})
		if sessionID != nil {
			db = db.Where("session_id = ?", *sessionID)
		}
		return db
	}

	row := &batch.StatsRow{
		ByCategory: make(map[batch.ReviewCategory]int64),
		ByPriority: make(map[batch.ReviewPriority]int64),
	}

	if err := scoped().Count(&row.TotalFiles).Error; err != nil {
		return nil, err
	}
	if err := scoped().Where("matching_status = ?", batch.MatchingReviewRequired).Count(&row.ReviewRequired).Error; err != nil {
		return nil, err
	}
	if err := scoped().Where("reviewed_at IS NOT NULL").Count(&row.CompletedReviews).Error; err != nil {
		return nil, err
	}

	type labelCount struct {
		Label string
		N     int64
	}

	var byCat []labelCount
	if err := scoped().
		Select("review_category AS label, COUNT(*) AS n").
		Where("review_category IS NOT NULL").
		Group("review_category").
		Scan(&byCat).Error; err != nil {
		return nil, err
	}
	for _, lc := range byCat {
		row.ByCategory[batch.ReviewCategory(lc.Label)] = lc.N
	}

	var byPrio []labelCount
	if err := scoped().
		Select("review_priority AS label, COUNT(*) AS n").
		Where("review_priority IS NOT NULL").
		Group("review_priority").
		Scan(&byPrio).Error; err != nil {
		return nil, err
	}
	for _, lc := range byPrio {
		row.ByPriority[batch.ReviewPriority(lc.Label)] = lc.N
	}

	return row, nil
}

// isUniqueViolation detects postgres unique constraint errors (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
