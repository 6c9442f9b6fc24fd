package batch

import (
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
	"github.com/google/uuid"
)

// DecisionKind enumerates the six administrator resolutions. Handling is
// dispatched over this closed set; ParseKind is the only entry point from
// the wire, so an unknown value never reaches the dispatcher.
type DecisionKind string

const (
	DecisionApproveMatch    DecisionKind = "approve_match"
	DecisionRejectMatch     DecisionKind = "reject_match"
	DecisionManualMatch     DecisionKind = "manual_match"
	DecisionSkipFile        DecisionKind = "skip_file"
	DecisionRetryProcessing DecisionKind = "retry_processing"
	DecisionDeleteFile      DecisionKind = "delete_file"
)

func DecisionKinds() []DecisionKind {
	return []DecisionKind{
		DecisionApproveMatch,
		DecisionRejectMatch,
		DecisionManualMatch,
		DecisionSkipFile,
		DecisionRetryProcessing,
		DecisionDeleteFile,
	}
}

// ParseKind validates a decision kind string, wrapping ErrUnsupportedDecision
// with the offending value when unrecognized.
func ParseKind(s string) (DecisionKind, error) {
	k := DecisionKind(s)
	switch k {
	case DecisionApproveMatch, DecisionRejectMatch, DecisionManualMatch,
		DecisionSkipFile, DecisionRetryProcessing, DecisionDeleteFile:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDecision, s)
}

// Decision is the ephemeral instruction an administrator submits against
// one file. It is consumed once; its effects are recorded onto the File.
type Decision struct {
	Kind              DecisionKind
	SelectedPatientID *uuid.UUID                    // required for manual_match
	NewPatient        *patient.CreatePatientCommand // required for reject_match
	AdminNotes        string
	ReviewedBy        string
}

// DecisionResult is the per-file outcome payload every decision call returns.
type DecisionResult struct {
	BatchFileID uuid.UUID    `json:"batch_file_id"`
	Filename    string       `json:"filename"`
	Decision    DecisionKind `json:"decision"`
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	PatientID   *uuid.UUID   `json:"patient_id,omitempty"`
	DocumentID  *uuid.UUID   `json:"document_id,omitempty"`
	// Non-fatal degradation, e.g. the document was created but its
	// vectorization failed.
	Warning string `json:"warning,omitempty"`
}

// BulkResult aggregates a bulk approval run. Individual file failures are
// counted, never raised; partial completion is the expected outcome.
type BulkResult struct {
	ApprovedCount       int     `json:"approved_count"`
	FailedCount         int     `json:"failed_count"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// Stats is the read-only review snapshot over a session or all sessions.
// Every enum member is present in the breakdowns even at zero.
type Stats struct {
	TotalFiles       int64                    `json:"total_files"`
	ReviewRequired   int64                    `json:"review_required"`
	CompletedReviews int64                    `json:"completed_reviews"`
	ReviewPercentage float64                  `json:"review_percentage"`
	ByCategory       map[ReviewCategory]int64 `json:"by_category"`
	ByPriority       map[ReviewPriority]int64 `json:"by_priority"`
}
