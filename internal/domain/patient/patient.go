package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderUnknown:
		return true
	}
	return false
}

// Patient is the canonical patient record. Review decisions either bind a
// document to an existing patient or create a new one from parsed data;
// many batch files can resolve to the same patient.
type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"` // Soft delete

	MedicalRecordNumber string    `gorm:"column:medical_record_number;type:varchar(50);uniqueIndex;not null"`
	FirstName           string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName            string    `gorm:"column:last_name;type:varchar(100);not null"`
	BirthDate           time.Time `gorm:"column:birth_date"`
	Gender              Gender    `gorm:"column:gender;type:varchar(20);default:'unknown'"`

	Phone   string `gorm:"column:phone;type:varchar(20)"`
	Email   string `gorm:"column:email;type:varchar(255)"`
	Address string `gorm:"column:address;type:text"`

	// Optimistic concurrency token; bumped on every update.
	Version int `gorm:"column:version;default:1;not null"`

	CreatedBy string `gorm:"column:created_by;type:varchar(255)"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// CreatePatientCommand carries the new patient data an administrator
// submits when rejecting all suggested matches.
type CreatePatientCommand struct {
	MedicalRecordNumber string     `json:"medical_record_number"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	BirthDate           *time.Time `json:"birth_date,omitempty"`
	Gender              Gender     `json:"gender,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	Email               string     `json:"email,omitempty"`
	Address             string     `json:"address,omitempty"`
}

// Validate returns the missing/invalid field names, empty when valid.
// MedicalRecordNumber and a name are the minimum for a usable record.
func (c *CreatePatientCommand) Validate() []string {
	var fields []string
	if strings.TrimSpace(c.MedicalRecordNumber) == "" {
		fields = append(fields, "medical_record_number is required")
	}
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
		fields = append(fields, "name is required")
	}
	if c.Gender != "" && !c.Gender.IsValid() {
		fields = append(fields, "gender is invalid")
	}
	if c.BirthDate != nil && c.BirthDate.After(time.Now()) {
		fields = append(fields, "birth_date cannot be in the future")
	}
	return fields
}
