package batch

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/document"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
	"github.com/google/uuid"
)

// ListQuery filters the pending review listing.
type ListQuery struct {
	SessionID *uuid.UUID
	Priority  *ReviewPriority
	Category  *ReviewCategory
	Limit     int
}

// FileUpdate is the field set a decision writes onto a file. The update is
// applied with a compare-and-set on ExpectedVersion; a mismatch means a
// concurrent decision won and yields ErrDecisionConflict.
type FileUpdate struct {
	ExpectedVersion int

	ProcessingStatus ProcessingStatus
	MatchingStatus   MatchingStatus

	PatientID  *uuid.UUID
	DocumentID *uuid.UUID
	// ClearDocumentRef drops the file's document reference, used when a
	// delete disposes of a partially created document.
	ClearDocumentRef bool

	ClearError          bool
	ErrorMessage        *string
	ClearClassification bool

	ReviewedBy *string
	AdminNotes *string
	ReviewedAt *time.Time
}

// DecisionEffect is the atomic write set of one decision: optional patient
// and document inserts plus the guarded file update. The repository applies
// it in a single transaction; any failure leaves the file unmodified.
type DecisionEffect struct {
	FileID uuid.UUID
	Update FileUpdate

	CreatePatient  *patient.Patient
	CreateDocument *document.Document
	// DeleteDocument removes a partially created document (delete_file).
	DeleteDocument *uuid.UUID
}

// StatsRow is the raw aggregation the repository produces; the stats
// service normalizes it (zero-filled enums, percentage).
type StatsRow struct {
	TotalFiles       int64
	ReviewRequired   int64
	CompletedReviews int64
	ByCategory       map[ReviewCategory]int64
	ByPriority       map[ReviewPriority]int64
}

type Repository interface {
	// CreateSession persists a new batch session.
	CreateSession(ctx context.Context, s *Session) error

	// GetSession returns ErrSessionNotFound when absent.
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)

	// CreateFiles persists the files of a session in one batch insert.
	CreateFiles(ctx context.Context, files []*File) error

	// GetFile returns ErrFileNotFound when absent.
	GetFile(ctx context.Context, id uuid.UUID) (*File, error)

	// ListPending returns files waiting on a human decision, highest
	// priority first, oldest first within a priority.
	ListPending(ctx context.Context, q *ListQuery) ([]*File, error)

	// ListBulkEligible returns the IDs of a session's files with
	// matching_status = review_required, processing_status = pending and
	// matching_confidence >= threshold, highest confidence first.
	ListBulkEligible(ctx context.Context, sessionID uuid.UUID, threshold float64) ([]uuid.UUID, error)

	// ApplyDecision atomically applies a decision's write set. Returns
	// ErrDecisionConflict when the version check fails and
	// patient.ErrDuplicatePatient when a patient insert violates MRN
	// uniqueness; in both cases nothing is persisted.
	ApplyDecision(ctx context.Context, effect *DecisionEffect) error

	// Stats aggregates counts over one session, or all sessions when
	// sessionID is nil. Read-only.
	Stats(ctx context.Context, sessionID *uuid.UUID) (*StatsRow, error)
}
