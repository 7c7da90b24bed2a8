package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// All repository interfaces in one file. Conditional writes return false,
// with a nil error, when the row exists but the precondition did not hold.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		// ListProfessionals returns hcp users; an empty filter returns all of them.
		ListProfessionals(ctx context.Context, specialties []model.Specialty) ([]*model.Professional, error)
	}

	ConsultationRepository interface {
		Create(ctx context.Context, c *model.Consultation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.ConsultationDetail, error)
		// Transition moves the consultation to `to` only if its status is in `from`
		// and professionalID is the bound professional.
		Transition(ctx context.Context, id, professionalID uuid.UUID, from []model.ConsultationStatus, to model.ConsultationStatus) (bool, error)
		SaveNotes(ctx context.Context, id, professionalID uuid.UUID, notes string) (bool, error)
		SaveDiagnosis(ctx context.Context, id, professionalID uuid.UUID, diagnosis *model.Diagnosis) (bool, error)
		SavePrescription(ctx context.Context, id, professionalID uuid.UUID, prescription *model.Prescription) (bool, error)
		ListWaiting(ctx context.Context, professionalID uuid.UUID) ([]*model.QueueEntry, error)
		ListCompleted(ctx context.Context, userID uuid.UUID, role model.Role) ([]*model.ConsultationDetail, error)
		ListWithPrescription(ctx context.Context, patientID uuid.UUID) ([]*model.ConsultationDetail, error)
	}

	AlertRepository interface {
		Create(ctx context.Context, alert *model.Alert) error
		CreateBatch(ctx context.Context, alerts []*model.Alert) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Alert, error)
		MarkRead(ctx context.Context, id, userID uuid.UUID) (bool, error)
	}

	DiagnosticTestRepository interface {
		Create(ctx context.Context, test *model.DiagnosticTest) error
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.DiagnosticTest, error)
		Update(ctx context.Context, test *model.DiagnosticTest) (bool, error)
		Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
	}
)
