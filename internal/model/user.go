package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "hcp"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleProfessional
}

type Specialty string

const (
	SpecialtyGeneralPractice  Specialty = "General Practice"
	SpecialtyCardiology       Specialty = "Cardiology"
	SpecialtyDermatology      Specialty = "Dermatology"
	SpecialtyGastroenterology Specialty = "Gastroenterology"
	SpecialtyNeurology        Specialty = "Neurology"
	SpecialtyPediatrics       Specialty = "Pediatrics"
	SpecialtyPsychiatry       Specialty = "Psychiatry"
	SpecialtyOrthopedics      Specialty = "Orthopedics"
	SpecialtyGynecology       Specialty = "Gynecology"
	SpecialtyOphthalmology    Specialty = "Ophthalmology"
	SpecialtyENT              Specialty = "ENT"
	SpecialtyPulmonology      Specialty = "Pulmonology"
	SpecialtyEndocrinology    Specialty = "Endocrinology"
	SpecialtyUrology          Specialty = "Urology"
)

var Specialties = []Specialty{
	SpecialtyGeneralPractice,
	SpecialtyCardiology,
	SpecialtyDermatology,
	SpecialtyGastroenterology,
	SpecialtyNeurology,
	SpecialtyPediatrics,
	SpecialtyPsychiatry,
	SpecialtyOrthopedics,
	SpecialtyGynecology,
	SpecialtyOphthalmology,
	SpecialtyENT,
	SpecialtyPulmonology,
	SpecialtyEndocrinology,
	SpecialtyUrology,
}

func (s Specialty) Valid() bool {
	for _, known := range Specialties {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentCash       PaymentMethod = "cash"
	PaymentMedicalAid PaymentMethod = "medicalAid"
)

// MedicalAids lists the schemes a patient can be registered under.
var MedicalAids = []string{
	"Discovery Health",
	"Bonitas",
	"Momentum Health",
	"Fedhealth",
	"Medihelp",
	"Bestmed",
	"Profmed",
	"Keyhealth",
	"Sizwe-Hosmed",
	"Netcare Medical Scheme",
}

type MedicalAid struct {
	Name         string `json:"name"`
	MemberNumber string `json:"memberNumber"`
}

// PatientProfile holds the fields that exist only for role patient.
type PatientProfile struct {
	PaymentMethod        PaymentMethod `json:"paymentMethod"`
	MedicalAid           *MedicalAid   `json:"medicalAidInfo,omitempty"`
	NotificationsEnabled bool          `json:"notificationsEnabled"`
	PreferredLanguage    string        `json:"preferredLanguage,omitempty"`
	DateOfBirth          *time.Time    `json:"dateOfBirth,omitempty"`
	KnownConditions      []string      `json:"knownConditions,omitempty"`
}

// Age in whole years at now, or 0 when the date of birth is unknown.
func (p *PatientProfile) Age(now time.Time) int {
	if p == nil || p.DateOfBirth == nil {
		return 0
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func (p *PatientProfile) Validate() error {
	switch p.PaymentMethod {
	case PaymentCard, PaymentCash:
		if p.MedicalAid != nil {
			return errors.New("medical aid details are only accepted with payment method medicalAid")
		}
	case PaymentMedicalAid:
		if p.MedicalAid == nil || p.MedicalAid.Name == "" || p.MedicalAid.MemberNumber == "" {
			return errors.New("medical aid name and member number are required")
		}
		if !knownMedicalAid(p.MedicalAid.Name) {
			return fmt.Errorf("unknown medical aid %q", p.MedicalAid.Name)
		}
	default:
		return fmt.Errorf("invalid payment method %q", p.PaymentMethod)
	}
	return nil
}

func knownMedicalAid(name string) bool {
	for _, aid := range MedicalAids {
		if aid == name {
			return true
		}
	}
	return false
}

func (p PatientProfile) Value() (driver.Value, error) { return valueJSON(p) }
func (p *PatientProfile) Scan(src interface{}) error  { return scanJSON(src, p) }

// ProfessionalProfile holds the fields that exist only for role hcp.
type ProfessionalProfile struct {
	PracticeNumber string    `json:"practiceNumber"`
	Specialty      Specialty `json:"specialty"`
}

func (p *ProfessionalProfile) Validate() error {
	if p.PracticeNumber == "" {
		return errors.New("practice number is required")
	}
	if !p.Specialty.Valid() {
		return fmt.Errorf("invalid specialty %q", p.Specialty)
	}
	return nil
}

func (p ProfessionalProfile) Value() (driver.Value, error) { return valueJSON(p) }
func (p *ProfessionalProfile) Scan(src interface{}) error  { return scanJSON(src, p) }

// User is an identity core plus exactly one role variant.
type User struct {
	Base
	Name         string               `json:"name" db:"name"`
	Email        string               `json:"email" db:"email"`
	PasswordHash string               `json:"-" db:"password_hash"`
	Role         Role                 `json:"role" db:"role"`
	Patient      *PatientProfile      `json:"patientProfile,omitempty" db:"patient_profile"`
	Professional *ProfessionalProfile `json:"professionalProfile,omitempty" db:"professional_profile"`
}

// Validate checks that the profile variant present matches the role.
func (u *User) Validate() error {
	switch u.Role {
	case RolePatient:
		if u.Patient == nil || u.Professional != nil {
			return errors.New("patient accounts carry a patient profile only")
		}
		return u.Patient.Validate()
	case RoleProfessional:
		if u.Professional == nil || u.Patient != nil {
			return errors.New("professional accounts carry a professional profile only")
		}
		return u.Professional.Validate()
	default:
		return fmt.Errorf("invalid role %q", u.Role)
	}
}

func (u *User) Specialty() Specialty {
	if u.Professional == nil {
		return ""
	}
	return u.Professional.Specialty
}

// Session is the caller identity resolved from the session token.
type Session struct {
	ID    uuid.UUID `json:"id"`
	Role  Role      `json:"role"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     Role   `json:"role" binding:"required,oneof=patient hcp"`

	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	MedicalAid      *MedicalAid   `json:"medicalAidInfo"`
	DateOfBirth     *time.Time    `json:"dateOfBirth"`
	KnownConditions []string      `json:"knownConditions"`

	PracticeNumber string    `json:"practiceNumber"`
	Specialty      Specialty `json:"specialty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name                 *string `json:"name" binding:"omitempty,min=2"`
	Email                *string `json:"email" binding:"omitempty,email"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
	PreferredLanguage    *string `json:"preferredLanguage"`
}

// Professional is the matcher's view of an hcp user.
type Professional struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Specialty Specialty `json:"specialty" db:"specialty"`
}
