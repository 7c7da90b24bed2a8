package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type ConsultationStatus string

const (
	StatusWaiting   ConsultationStatus = "waiting"
	StatusActive    ConsultationStatus = "active"
	StatusCompleted ConsultationStatus = "completed"
	StatusCancelled ConsultationStatus = "cancelled"
)

// Terminal statuses admit no further transitions.
func (s ConsultationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Rank orders urgencies for the queue: High first. Unknown values sort last.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyLow:
		return 2
	default:
		return 3
	}
}

// TriageResult is the validated output of symptom analysis.
type TriageResult struct {
	SuggestedProfessionals []string `json:"suggestedProfessionals" validate:"required,min=1,dive,required"`
	ConfidenceLevel        *float64 `json:"confidenceLevel" validate:"required,gte=0,lte=1"`
	UrgencyLevel           Urgency  `json:"urgencyLevel" validate:"required,oneof=Low Medium High"`
	RecommendedAction      string   `json:"recommendedAction" validate:"required"`
}

func (t TriageResult) Value() (driver.Value, error) { return valueJSON(t) }
func (t *TriageResult) Scan(src interface{}) error  { return scanJSON(src, t) }

type Diagnosis struct {
	DiagnosisSummary     string   `json:"diagnosisSummary" validate:"required"`
	PotentialConditions  []string `json:"potentialConditions" validate:"required,min=1,dive,required"`
	RecommendedNextSteps string   `json:"recommendedNextSteps" validate:"required"`
}

func (d Diagnosis) Value() (driver.Value, error) { return valueJSON(d) }
func (d *Diagnosis) Scan(src interface{}) error  { return scanJSON(src, d) }

type Medication struct {
	Name      string `json:"name" validate:"required"`
	Dosage    string `json:"dosage" validate:"required"`
	Frequency string `json:"frequency" validate:"required"`
	Reason    string `json:"reason"`
}

// Prescription lists medications, which may be empty but must be present.
type Prescription struct {
	Medications     []Medication `json:"medications" validate:"required,dive"`
	Notes           string       `json:"notes"`
	ConfidenceLevel *float64     `json:"confidenceLevel" validate:"required,gte=0,lte=1"`
}

func (p Prescription) Value() (driver.Value, error) { return valueJSON(p) }
func (p *Prescription) Scan(src interface{}) error  { return scanJSON(src, p) }

type Consultation struct {
	Base
	PatientID               uuid.UUID          `json:"patientId" db:"patient_id"`
	ProfessionalID          uuid.UUID          `json:"professionalId" db:"professional_id"`
	Status                  ConsultationStatus `json:"status" db:"status"`
	SymptomsSummary         string             `json:"symptomsSummary" db:"symptoms_summary"`
	Triage                  TriageResult       `json:"aiAnalysis" db:"triage"`
	Notes                   *string            `json:"consultationNotes,omitempty" db:"notes"`
	Diagnosis               *Diagnosis         `json:"diagnosis,omitempty" db:"diagnosis"`
	Prescription            *Prescription      `json:"prescription,omitempty" db:"prescription"`
	PostConsultationSummary *string            `json:"postConsultationSummary,omitempty" db:"post_consultation_summary"`
}

// Involves reports whether userID is one of the bound parties.
func (c *Consultation) Involves(userID uuid.UUID) bool {
	return c.PatientID == userID || c.ProfessionalID == userID
}

// ConsultationDetail joins a consultation with the names of both parties.
type ConsultationDetail struct {
	Consultation
	PatientName           string    `json:"patientName" db:"patient_name"`
	ProfessionalName      string    `json:"professionalName" db:"professional_name"`
	ProfessionalSpecialty Specialty `json:"professionalSpecialty" db:"professional_specialty"`
}

// QueueEntry is one waiting consultation in a professional's queue.
type QueueEntry struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	PatientID       uuid.UUID    `json:"patientId" db:"patient_id"`
	PatientName     string       `json:"patientName" db:"patient_name"`
	SymptomsSummary string       `json:"symptomsSummary" db:"symptoms_summary"`
	Triage          TriageResult `json:"aiAnalysis" db:"triage"`
	CreatedAt       time.Time    `json:"createdAt" db:"created_at"`
}

// WaitingRoom is the polled view a patient sees after booking.
type WaitingRoom struct {
	ID                    uuid.UUID          `json:"id"`
	PatientID             uuid.UUID          `json:"patientId"`
	ProfessionalID        uuid.UUID          `json:"professionalId"`
	Status                ConsultationStatus `json:"status"`
	SymptomsSummary       string             `json:"symptomsSummary"`
	PatientName           string             `json:"patientName"`
	ProfessionalName      string             `json:"professionalName"`
	ProfessionalSpecialty Specialty          `json:"professionalSpecialty"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

// HistoryEntry is the input to history summarization.
type HistoryEntry struct {
	Date                  time.Time
	ProfessionalName      string
	ProfessionalSpecialty Specialty
	SymptomsSummary       string
	DiagnosisSummary      string
}

// PrescriptionContext is the input to prescription generation.
type PrescriptionContext struct {
	SymptomsSummary   string `json:"symptomsSummary"`
	ConsultationNotes string `json:"consultationNotes"`
	FinalDiagnosis    string `json:"finalDiagnosis"`
}

type BookRequest struct {
	ProfessionalID  uuid.UUID    `json:"professionalId" binding:"required"`
	SymptomsSummary string       `json:"symptomsSummary" binding:"required"`
	Triage          TriageResult `json:"aiAnalysis"`
}
