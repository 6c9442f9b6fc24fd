package batch

import (
	"time"

	"github.com/google/uuid"
)

// MatchingStatus is the outcome of candidate matching for one file.
type MatchingStatus string

const (
	MatchingMatched        MatchingStatus = "matched"
	MatchingReviewRequired MatchingStatus = "review_required"
	MatchingNoMatch        MatchingStatus = "no_match"
	MatchingError          MatchingStatus = "error"
)

// ProcessingStatus is the lifecycle state of one file.
//
// State transitions:
//
//	pending → completed | error | skipped | rejected | deleted
//	error   → completed | skipped | rejected | deleted | pending (retry)
//	completed/skipped/rejected/deleted → pending (retry only)
type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingError     ProcessingStatus = "error"
	ProcessingSkipped   ProcessingStatus = "skipped"
	ProcessingRejected  ProcessingStatus = "rejected"
	ProcessingDeleted   ProcessingStatus = "deleted"
)

// IsTerminal reports whether the status can only be left via retry_processing.
func (s ProcessingStatus) IsTerminal() bool {
	switch s {
	case ProcessingCompleted, ProcessingSkipped, ProcessingRejected, ProcessingDeleted:
		return true
	}
	return false
}

type ReviewPriority string

const (
	PriorityHigh   ReviewPriority = "high"
	PriorityMedium ReviewPriority = "medium"
	PriorityLow    ReviewPriority = "low"
)

func (p ReviewPriority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Priorities lists all members, highest urgency first.
func Priorities() []ReviewPriority {
	return []ReviewPriority{PriorityHigh, PriorityMedium, PriorityLow}
}

type ReviewCategory string

const (
	CategoryPatientMatch    ReviewCategory = "patient_match"
	CategoryParsingError    ReviewCategory = "parsing_error"
	CategoryProcessingError ReviewCategory = "processing_error"
	CategoryOther           ReviewCategory = "other"
)

func (c ReviewCategory) IsValid() bool {
	switch c {
	case CategoryPatientMatch, CategoryParsingError, CategoryProcessingError, CategoryOther:
		return true
	}
	return false
}

func Categories() []ReviewCategory {
	return []ReviewCategory{CategoryPatientMatch, CategoryParsingError, CategoryProcessingError, CategoryOther}
}

// Classification is the review tag the classifier derives for one file.
type Classification struct {
	Category ReviewCategory `json:"category"`
	Priority ReviewPriority `json:"priority"`
}

// SuggestedMatch is one ranked candidate from the matcher.
type SuggestedMatch struct {
	PatientID  uuid.UUID `json:"patient_id"`
	Similarity float64   `json:"similarity"`
	Name       string    `json:"name"`
}

// Session groups the files of one batch upload.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	SourceLabel string `gorm:"column:source_label;type:varchar(255)"`
	FileCount   int    `gorm:"column:file_count;not null;default:0"`

	CreatedBy string `gorm:"column:created_by;type:varchar(255)"`
}

func (Session) TableName() string {
	return "intake.batch_sessions"
}

// File is one uploaded document's processing record.
type File struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	SessionID uuid.UUID `gorm:"column:session_id;type:uuid;not null;index"`
	Filename  string    `gorm:"column:filename;type:varchar(512);not null"`

	// Parsed identity; absent when filename/content parsing failed.
	ParsedPatientID    *string `gorm:"column:parsed_patient_id;type:varchar(50)"`
	ParsedPatientName  *string `gorm:"column:parsed_patient_name;type:varchar(255)"`
	ParsedDocumentType *string `gorm:"column:parsed_document_type;type:varchar(50)"`
	ExtractedText      string  `gorm:"column:extracted_text;type:text"`

	MatchingStatus     MatchingStatus   `gorm:"column:matching_status;type:varchar(30);not null;default:'review_required';index"`
	ProcessingStatus   ProcessingStatus `gorm:"column:processing_status;type:varchar(30);not null;default:'pending';index"`
	MatchingConfidence *float64         `gorm:"column:matching_confidence"`
	SuggestedMatches   []SuggestedMatch `gorm:"column:suggested_matches;serializer:json"`

	ReviewPriority *ReviewPriority `gorm:"column:review_priority;type:varchar(20);index"`
	ReviewCategory *ReviewCategory `gorm:"column:review_category;type:varchar(30);index"`

	ErrorMessage *string `gorm:"column:error_message;type:text"`

	// Set once a decision resolves the file.
	PatientID  *uuid.UUID `gorm:"column:patient_id;type:uuid;index"`
	DocumentID *uuid.UUID `gorm:"column:document_id;type:uuid"`

	ReviewedBy *string    `gorm:"column:reviewed_by;type:varchar(255)"`
	AdminNotes *string    `gorm:"column:admin_notes;type:text"`
	ReviewedAt *time.Time `gorm:"column:reviewed_at"`

	// Optimistic concurrency token; every decision is a compare-and-set
	// against the version it read.
	Version int `gorm:"column:version;default:1;not null"`
}

func (File) TableName() string {
	return "intake.batch_files"
}

// NeedsReview reports whether the file is waiting on a human decision.
func (f *File) NeedsReview() bool {
	if f.ProcessingStatus == ProcessingError {
		return true
	}
	return f.MatchingStatus == MatchingReviewRequired && f.ProcessingStatus == ProcessingPending
}

// TopMatch returns the highest-similarity candidate, nil when there is none.
func (f *File) TopMatch() *SuggestedMatch {
	if len(f.SuggestedMatches) == 0 {
		return nil
	}
	return &f.SuggestedMatches[0]
}

// Confidence returns the matching confidence, ok=false when unscored.
func (f *File) Confidence() (float64, bool) {
	if f.MatchingConfidence == nil {
		return 0, false
	}
	return *f.MatchingConfidence, true
}
