package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/document"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/vectorizer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DecisionService executes admin review decisions against batch files.
// Each call is a single synchronous unit of work: validation up front,
// one transactional write set, then best-effort vectorization. Concurrent
// decisions on the same file are serialized by the version compare-and-set
// in the repository; exactly one wins.
type DecisionService struct {
	files    batch.Repository
	patients patient.Repository
	docs     document.Repository
	indexer  vectorizer.Indexer
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDecisionService(
	files batch.Repository,
	patients patient.Repository,
	docs document.Repository,
	indexer vectorizer.Indexer,
	auditSvc *AuditService,
	log *zap.Logger,
) *DecisionService {
	return &DecisionService{
		files:    files,
		patients: patients,
		docs:     docs,
		indexer:  indexer,
		auditSvc: auditSvc,
		log:      log,
	}
}

// Apply executes exactly one decision against one file. Structural and
// validation failures reject synchronously with no mutation; persistence
// failures leave the file unmodified (the write set is transactional).
func (s *DecisionService) Apply(ctx context.Context, fileID uuid.UUID, d *batch.Decision) (*batch.DecisionResult, error) {
	if _, err := batch.ParseKind(string(d.Kind)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.ReviewedBy) == "" {
		return nil, &ValidationError{Fields: []string{"reviewed_by is required"}}
	}

	f, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if f.ProcessingStatus.IsTerminal() && d.Kind != batch.DecisionRetryProcessing {
		// Deleting an already-deleted file is a successful no-op, not an
		// error; the caller must be able to retry deletes blindly.
		if d.Kind == batch.DecisionDeleteFile && f.ProcessingStatus == batch.ProcessingDeleted {
			return &batch.DecisionResult{
				BatchFileID: f.ID,
				Filename:    f.Filename,
				Decision:    d.Kind,
				Success:     true,
				Message:     "file already deleted",
			}, nil
		}
		return nil, fmt.Errorf("%w (current status: %s)", batch.ErrTerminalState, f.ProcessingStatus)
	}

	effect, result, err := s.buildEffect(ctx, f, d)
	if err != nil {
		return nil, err
	}

	s.stamp(&effect.Update, d)

	if err := s.files.ApplyDecision(ctx, effect); err != nil {
		s.audit(ctx, d, f, false, err.Error())
		if errors.Is(err, batch.ErrDecisionConflict) || errors.Is(err, patient.ErrDuplicatePatient) {
			return nil, err
		}
		s.log.Error("failed to apply decision",
			zap.String("batch_file_id", f.ID.String()),
			zap.String("decision", string(d.Kind)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("applying decision: %w", err)
	}

	if effect.CreateDocument != nil {
		s.indexDocument(ctx, effect.CreateDocument, result)
	}

	s.audit(ctx, d, f, true, result.Message)

	s.log.Info("decision applied",
		zap.String("batch_file_id", f.ID.String()),
		zap.String("decision", string(d.Kind)),
		zap.String("reviewed_by", d.ReviewedBy),
	)

	return result, nil
}

// buildEffect derives the transactional write set for one decision. It
// performs all validation and existence checks; no state is mutated here.
func (s *DecisionService) buildEffect(ctx context.Context, f *batch.File, d *batch.Decision) (*batch.DecisionEffect, *batch.DecisionResult, error) {
	effect := &batch.DecisionEffect{
		FileID: f.ID,
		Update: batch.FileUpdate{
			ExpectedVersion:  f.Version,
			ProcessingStatus: f.ProcessingStatus,
			MatchingStatus:   f.MatchingStatus,
		},
	}
	result := &batch.DecisionResult{
		BatchFileID: f.ID,
		Filename:    f.Filename,
		Decision:    d.Kind,
		Success:     true,
	}

	switch d.Kind {
	case batch.DecisionApproveMatch:
		top := f.TopMatch()
		if top == nil {
			return nil, nil, &ValidationError{Fields: []string{"no suggested matches to approve"}}
		}
		p, err := s.patients.GetByID(ctx, top.PatientID)
		if err != nil {
			return nil, nil, err
		}
		s.resolveToPatient(effect, f, p.ID, d.ReviewedBy)
		result.PatientID = &p.ID
		result.DocumentID = effect.Update.DocumentID
		result.Message = fmt.Sprintf("matched to patient %s", p.FullName())

	case batch.DecisionRejectMatch:
		if d.NewPatient == nil {
			return nil, nil, &ValidationError{Fields: []string{"new_patient_data is required for reject_match"}}
		}
		if fields := d.NewPatient.Validate(); len(fields) > 0 {
			return nil, nil, &ValidationError{Fields: fields}
		}
		exists, err := s.patients.ExistsByMRN(ctx, d.NewPatient.MedicalRecordNumber)
		if err != nil {
			return nil, nil, fmt.Errorf("checking medical record number uniqueness: %w", err)
		}
		if exists {
			return nil, nil, patient.ErrDuplicatePatient
		}
		p := newPatientFromCommand(d.NewPatient, d.ReviewedBy)
		effect.CreatePatient = p
		s.resolveToPatient(effect, f, p.ID, d.ReviewedBy)
		result.PatientID = &p.ID
		result.DocumentID = effect.Update.DocumentID
		result.Message = fmt.Sprintf("created patient %s and attached document", p.FullName())

	case batch.DecisionManualMatch:
		if d.SelectedPatientID == nil || *d.SelectedPatientID == uuid.Nil {
			return nil, nil, &ValidationError{Fields: []string{MsgNoPatientSelected}}
		}
		p, err := s.patients.GetByID(ctx, *d.SelectedPatientID)
		if err != nil {
			return nil, nil, err
		}
		s.resolveToPatient(effect, f, p.ID, d.ReviewedBy)
		result.PatientID = &p.ID
		result.DocumentID = effect.Update.DocumentID
		result.Message = fmt.Sprintf("manually matched to patient %s", p.FullName())

	case batch.DecisionSkipFile:
		effect.Update.ProcessingStatus = batch.ProcessingSkipped
		result.Message = "file skipped"

	case batch.DecisionRetryProcessing:
		effect.Update.ProcessingStatus = batch.ProcessingPending
		effect.Update.ClearError = true
		// The classification invariant ties category/priority to
		// review_required or a processing error; a retried file that is
		// not awaiting a match review carries neither.
		if f.MatchingStatus != batch.MatchingReviewRequired {
			effect.Update.ClearClassification = true
		}
		result.Message = "file queued for reprocessing"

	case batch.DecisionDeleteFile:
		effect.Update.ProcessingStatus = batch.ProcessingDeleted
		if f.DocumentID != nil {
			effect.DeleteDocument = f.DocumentID
			effect.Update.ClearDocumentRef = true
		}
		result.Message = "file deleted"

	default:
		// Unreachable after ParseKind, kept for exhaustiveness.
		return nil, nil, fmt.Errorf("%w: %q", batch.ErrUnsupportedDecision, d.Kind)
	}

	return effect, result, nil
}

// resolveToPatient fills the shared write set of the three match-resolving
// decisions: a new document bound to the patient and a completed file.
func (s *DecisionService) resolveToPatient(effect *batch.DecisionEffect, f *batch.File, patientID uuid.UUID, reviewedBy string) {
	doc := &document.Document{
		ID:            uuid.New(),
		PatientID:     patientID,
		BatchFileID:   f.ID,
		Filename:      f.Filename,
		Type:          parsedType(f),
		ExtractedText: f.ExtractedText,
		VectorStatus:  document.VectorPending,
		CreatedBy:     reviewedBy,
	}
	effect.CreateDocument = doc
	effect.Update.ProcessingStatus = batch.ProcessingCompleted
	effect.Update.MatchingStatus = batch.MatchingMatched
	effect.Update.PatientID = &patientID
	effect.Update.DocumentID = &doc.ID
	effect.Update.ClearError = true
	// A resolved file is no longer a review case; the classification tag
	// only lives while matching_status is review_required or the file is
	// in a processing error.
	effect.Update.ClearClassification = true
}

// stamp records the reviewer on every successful decision regardless of kind.
func (s *DecisionService) stamp(u *batch.FileUpdate, d *batch.Decision) {
	now := time.Now()
	u.ReviewedBy = &d.ReviewedBy
	u.ReviewedAt = &now
	if d.AdminNotes != "" {
		notes := d.AdminNotes
		u.AdminNotes = &notes
	}
}

// indexDocument submits the new document for semantic indexing. Failures
// degrade to a warning on the result; the document is never rolled back.
func (s *DecisionService) indexDocument(ctx context.Context, doc *document.Document, result *batch.DecisionResult) {
	if err := s.indexer.Index(ctx, doc.ID, doc.ExtractedText); err != nil {
		result.Warning = "document created but vectorization failed: " + err.Error()
		s.log.Warn("vectorization failed",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err),
		)
		if serr := s.docs.SetVectorStatus(ctx, doc.ID, document.VectorFailed); serr != nil {
			s.log.Error("failed to record vector status", zap.Error(serr))
		}
		return
	}
	if serr := s.docs.SetVectorStatus(ctx, doc.ID, document.VectorIndexed); serr != nil {
		s.log.Error("failed to record vector status", zap.Error(serr))
	}
}

func (s *DecisionService) audit(ctx context.Context, d *batch.Decision, f *batch.File, success bool, message string) {
	s.auditSvc.LogAsync(ctx, AuditEntry{
		ReviewedBy:   d.ReviewedBy,
		Action:       string(domain.ActionDecision),
		Decision:     string(d.Kind),
		ResourceType: "batch_file",
		ResourceID:   f.ID.String(),
		Success:      success,
		Message:      message,
	})
}

func newPatientFromCommand(cmd *patient.CreatePatientCommand, createdBy string) *patient.Patient {
	gender := cmd.Gender
	if gender == "" {
		gender = patient.GenderUnknown
	}
	p := &patient.Patient{
		ID:                  uuid.New(),
		MedicalRecordNumber: strings.TrimSpace(cmd.MedicalRecordNumber),
		FirstName:           strings.TrimSpace(cmd.FirstName),
		LastName:            strings.TrimSpace(cmd.LastName),
		Gender:              gender,
		Phone:               strings.TrimSpace(cmd.Phone),
		Email:               strings.ToLower(strings.TrimSpace(cmd.Email)),
		Address:             cmd.Address,
		Version:             1,
		CreatedBy:           createdBy,
	}
	if cmd.BirthDate != nil {
		p.BirthDate = *cmd.BirthDate
	}
	return p
}

func parsedType(f *batch.File) document.DocumentType {
	if f.ParsedDocumentType == nil {
		return document.TypeOther
	}
	return document.ParseType(*f.ParsedDocumentType)
}
