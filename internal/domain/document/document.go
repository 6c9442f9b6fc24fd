package document

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	TypeLabReport        DocumentType = "lab_report"
	TypeImagingReport    DocumentType = "imaging_report"
	TypeDischargeSummary DocumentType = "discharge_summary"
	TypeReferralLetter   DocumentType = "referral_letter"
	TypeConsentForm      DocumentType = "consent_form"
	TypeOther            DocumentType = "other"
)

// ParseType maps a parsed document-type label onto the known set,
// defaulting to TypeOther for anything unrecognized.
func ParseType(s string) DocumentType {
	switch DocumentType(s) {
	case TypeLabReport, TypeImagingReport, TypeDischargeSummary, TypeReferralLetter, TypeConsentForm:
		return DocumentType(s)
	}
	return TypeOther
}

// VectorStatus tracks the best-effort semantic index state. A failed
// vectorization never invalidates the document itself.
type VectorStatus string

const (
	VectorPending VectorStatus = "pending"
	VectorIndexed VectorStatus = "indexed"
	VectorFailed  VectorStatus = "failed"
)

// Document is a scanned medical document bound to a patient, created when
// a batch file is resolved (automatically or by an admin decision).
type Document struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PatientID   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	BatchFileID uuid.UUID `gorm:"column:batch_file_id;type:uuid;not null;index"`

	Filename      string       `gorm:"column:filename;type:varchar(512);not null"`
	Type          DocumentType `gorm:"column:type;type:varchar(50);not null;default:'other'"`
	ExtractedText string       `gorm:"column:extracted_text;type:text"`

	VectorStatus VectorStatus `gorm:"column:vector_status;type:varchar(20);not null;default:'pending';index"`

	CreatedBy string `gorm:"column:created_by;type:varchar(255)"`
}

func (Document) TableName() string {
	return "clinical.documents"
}
