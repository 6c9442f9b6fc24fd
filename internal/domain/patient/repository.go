package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient. Returns ErrDuplicatePatient when the
	// medical record number is already taken.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// GetByMRN retrieves a patient by medical record number.
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)

	// ExistsByMRN checks for uniqueness without fetching the full record.
	ExistsByMRN(ctx context.Context, mrn string) (bool, error)

	// ListActive returns all non-deleted patients for similarity ranking.
	// The registry is small enough to score in memory; revisit if it is not.
	ListActive(ctx context.Context) ([]*Patient, error)
}
