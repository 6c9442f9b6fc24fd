package document

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// GetByID retrieves a document. Returns ErrDocumentNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// SetVectorStatus records the semantic index outcome for a document.
	SetVectorStatus(ctx context.Context, id uuid.UUID, status VectorStatus) error

	// ListByVectorStatus returns documents in the given index state,
	// used by the reindex pass to pick up failed vectorizations.
	ListByVectorStatus(ctx context.Context, status VectorStatus, limit int) ([]*Document, error)
}
