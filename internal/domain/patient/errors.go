package patient

import "errors"

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrDuplicatePatient = errors.New("patient with this medical record number already exists")
	ErrInvalidGender    = errors.New("invalid gender value")
	ErrMRNRequired      = errors.New("medical record number is required")
)
