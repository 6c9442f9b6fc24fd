package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/domain/batch"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/matcher"
	"github.com/dmehra2102/prod-golang-projects/docintake/internal/review"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AutoResolveReviewer is stamped on files resolved without a human in the
// loop (single unambiguous candidate at or above the auto-approve threshold).
const AutoResolveReviewer = "system:auto-resolve"

// ParsedFile is one file's extraction output as delivered by the upstream
// OCR/parsing pipeline.
type ParsedFile struct {
	Filename           string  `json:"filename"`
	ExtractedText      string  `json:"extracted_text"`
	ParsedPatientID    *string `json:"parsed_patient_id"`
	ParsedPatientName  *string `json:"parsed_patient_name"`
	ParsedDocumentType *string `json:"parsed_document_type"`
	// Set when parsing itself failed; such files go straight to review.
	ParseError *string `json:"parse_error,omitempty"`
}

type RegisterBatchCommand struct {
	SourceLabel string
	CreatedBy   string
	Files       []ParsedFile
}

// IntakeResult summarizes one registered batch.
type IntakeResult struct {
	Session        *batch.Session `json:"session"`
	TotalFiles     int            `json:"total_files"`
	AutoResolved   int            `json:"auto_resolved"`
	ReviewRequired int            `json:"review_required"`
	Errored        int            `json:"errored"`

	// Classified carries the review tag of every flagged file so callers
	// can aggregate without re-reading the session.
	Classified []batch.Classification `json:"-"`
}

// IntakeService registers parsed batches: it asks the matcher adapter for
// candidates, classifies every uncertain file, and auto-resolves the
// unambiguous high-confidence ones so they never enter the review queue.
type IntakeService struct {
	files      batch.Repository
	adapter    matcher.Adapter
	classifier *review.Classifier
	decisions  *DecisionService
	auditSvc   *AuditService
	log        *zap.Logger
}

func NewIntakeService(
	files batch.Repository,
	adapter matcher.Adapter,
	classifier *review.Classifier,
	decisions *DecisionService,
	auditSvc *AuditService,
	log *zap.Logger,
) *IntakeService {
	return &IntakeService{
		files:      files,
		adapter:    adapter,
		classifier: classifier,
		decisions:  decisions,
		auditSvc:   auditSvc,
		log:        log,
	}
}

func (s *IntakeService) RegisterBatch(ctx context.Context, cmd *RegisterBatchCommand) (*IntakeResult, error) {
	if len(cmd.Files) == 0 {
		return nil, &ValidationError{Fields: []string{"at least one file is required"}}
	}
	if strings.TrimSpace(cmd.CreatedBy) == "" {
		return nil, &ValidationError{Fields: []string{"created_by is required"}}
	}

	session := &batch.Session{
		ID:          uuid.New(),
		SourceLabel: cmd.SourceLabel,
		FileCount:   len(cmd.Files),
		CreatedBy:   cmd.CreatedBy,
	}
	if err := s.files.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating batch session: %w", err)
	}

	result := &IntakeResult{Session: session, TotalFiles: len(cmd.Files)}

	files := make([]*batch.File, 0, len(cmd.Files))
	var autoResolve []uuid.UUID
	for i := range cmd.Files {
		f := s.buildFile(ctx, session.ID, &cmd.Files[i])

		cls, needsReview := s.classifier.Classify(f)
		switch {
		case needsReview:
			f.ReviewCategory = &cls.Category
			f.ReviewPriority = &cls.Priority
			result.Classified = append(result.Classified, cls)
			if f.ProcessingStatus == batch.ProcessingError {
				result.Errored++
			} else {
				result.ReviewRequired++
			}
		default:
			// Single unambiguous candidate at auto-approve confidence,
			// resolved through the decision path below. Until that lands
			// the file carries a fallback review tag: if the resolution
			// fails it stays visible in the queue instead of stranding
			// as matched/pending.
			cat, prio := batch.CategoryOther, batch.PriorityMedium
			f.ReviewCategory = &cat
			f.ReviewPriority = &prio
			autoResolve = append(autoResolve, f.ID)
		}
		files = append(files, f)
	}

	if err := s.files.CreateFiles(ctx, files); err != nil {
		return nil, fmt.Errorf("creating batch files: %w", err)
	}

	for _, id := range autoResolve {
		_, err := s.decisions.Apply(ctx, id, &batch.Decision{
			Kind:       batch.DecisionApproveMatch,
			ReviewedBy: AutoResolveReviewer,
			AdminNotes: "auto-resolved at intake",
		})
		if err != nil {
			// The file keeps its fallback tag and stays in the review
			// queue; an admin resolves it by hand.
			s.log.Warn("auto-resolve failed, file left for manual review",
				zap.String("batch_file_id", id.String()),
				zap.Error(err),
			)
			result.ReviewRequired++
			result.Classified = append(result.Classified, batch.Classification{
				Category: batch.CategoryOther,
				Priority: batch.PriorityMedium,
			})
			continue
		}
		result.AutoResolved++
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		ReviewedBy:   cmd.CreatedBy,
		Action:       string(domain.ActionIntake),
		ResourceType: "batch_session",
		ResourceID:   session.ID.String(),
		Success:      true,
		Message:      fmt.Sprintf("registered %d files", len(cmd.Files)),
	})

	s.log.Info("batch registered",
		zap.String("session_id", session.ID.String()),
		zap.Int("total", result.TotalFiles),
		zap.Int("auto_resolved", result.AutoResolved),
		zap.Int("review_required", result.ReviewRequired),
		zap.Int("errored", result.Errored),
	)

	return result, nil
}

// buildFile assembles one file record, invoking the matcher adapter when a
// parsed identity is available. Matcher failures mark the file as a
// processing error so the case surfaces in review instead of vanishing.
func (s *IntakeService) buildFile(ctx context.Context, sessionID uuid.UUID, pf *ParsedFile) *batch.File {
	f := &batch.File{
		ID:                 uuid.New(),
		SessionID:          sessionID,
		Filename:           pf.Filename,
		ParsedPatientID:    pf.ParsedPatientID,
		ParsedPatientName:  pf.ParsedPatientName,
		ParsedDocumentType: pf.ParsedDocumentType,
		ExtractedText:      pf.ExtractedText,
		MatchingStatus:     batch.MatchingReviewRequired,
		ProcessingStatus:   batch.ProcessingPending,
		Version:            1,
	}

	if pf.ParseError != nil && *pf.ParseError != "" {
		f.ProcessingStatus = batch.ProcessingError
		f.ErrorMessage = pf.ParseError
		return f
	}

	if isBlank(pf.ParsedPatientName) && isBlank(pf.ParsedPatientID) {
		// Nothing to match against; the classifier flags this as a
		// parsing error.
		return f
	}

	name, id := deref(pf.ParsedPatientName), deref(pf.ParsedPatientID)
	matches, err := s.adapter.Match(ctx, name, id)
	if err != nil {
		msg := "candidate matching failed: " + err.Error()
		f.MatchingStatus = batch.MatchingError
		f.ProcessingStatus = batch.ProcessingError
		f.ErrorMessage = &msg
		return f
	}

	f.SuggestedMatches = matches
	conf := 0.0
	if len(matches) > 0 {
		conf = matches[0].Similarity
	}
	f.MatchingConfidence = &conf
	return f
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
