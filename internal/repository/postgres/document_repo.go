package postgres

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/document"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	var d document.Document
	err := r.db.WithContext(ctx).First(&d, "id = ? AND deleted_at IS NULL", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, document.ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) SetVectorStatus(ctx context.Context, id uuid.UUID, status document.VectorStatus) error {
	res := r.db.WithContext(ctx).Model(&document.Document{}).
		Where("id = ?", id).
		Update("vector_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return document.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) ListByVectorStatus(ctx context.Context, status document.VectorStatus, limit int) ([]*document.Document, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var docs []*document.Document
	err := r.db.WithContext(ctx).
		Where("vector_status = ? AND deleted_at IS NULL", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
