package service

import (
	"errors"
	"strings"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

// MsgNoPatientSelected is the fixed validation message for a manual match
// submitted without a patient. The dashboard matches on this string.
const MsgNoPatientSelected = "No patient selected for manual match"

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type AuditEntry struct {
	ReviewedBy   string
	Action       string
	Decision     string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Success      bool
	Message      string
}
