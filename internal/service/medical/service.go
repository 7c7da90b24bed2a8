package medical

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/llm"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
	"github.com/nkosi-ncube/CareIQ/pkg/validator"
)

// Service drafts diagnoses and prescriptions with the model and persists
// the versions a professional approves. Drafts are never stored.
type Service struct {
	llm           llm.Client
	consultations repository.ConsultationRepository
	validator     validator.Validator
	logger        *logger.Logger
}

func NewService(client llm.Client, consultations repository.ConsultationRepository, log *logger.Logger) *Service {
	return &Service{
		llm:           client,
		consultations: consultations,
		validator:     validator.New(),
		logger:        log,
	}
}

type DiagnosisInput struct {
	SymptomsSummary   string `json:"symptomsSummary"`
	ConsultationNotes string `json:"consultationNotes"`
}

func (s *Service) GenerateDiagnosis(ctx context.Context, session *model.Session, in DiagnosisInput) (*model.Diagnosis, error) {
	if err := auth.RequireRole(session, model.RoleProfessional); err != nil {
		return nil, err
	}
	notes := strings.TrimSpace(in.ConsultationNotes)
	if notes == "" {
		return nil, apperrors.InvalidInput("consultation notes are required", nil)
	}

	diagnosis, err := llm.Generate[model.Diagnosis](ctx, s.llm, llm.Request{
		Name:        "generate_diagnosis",
		Instruction: diagnosisInstruction,
		Schema:      diagnosisSchema,
		Input:       fmt.Sprintf("Symptom summary: %s\nConsultation notes: %s", in.SymptomsSummary, notes),
	})
	if err != nil {
		return nil, apperrors.GenerationFailed("diagnosis", err)
	}
	return diagnosis, nil
}

// SaveDiagnosis stores the approved diagnosis and mirrors its summary into
// the consultation's post-consultation summary.
func (s *Service) SaveDiagnosis(ctx context.Context, session *model.Session, id uuid.UUID, diagnosis *model.Diagnosis) error {
	if err := s.authorize(ctx, session, id); err != nil {
		return err
	}
	if err := s.validator.Validate(diagnosis); err != nil {
		return apperrors.InvalidInput(err.Error(), err)
	}

	ok, err := s.consultations.SaveDiagnosis(ctx, id, session.ID, diagnosis)
	if err != nil {
		return apperrors.PersistenceFailed(err)
	}
	if !ok {
		return apperrors.InvalidTransition("a diagnosis can only be saved once the consultation has started")
	}
	s.logger.Info("diagnosis saved", "consultation_id", id.String())
	return nil
}

func (s *Service) GeneratePrescription(ctx context.Context, session *model.Session, pc model.PrescriptionContext) (*model.Prescription, error) {
	if err := auth.RequireRole(session, model.RoleProfessional); err != nil {
		return nil, err
	}
	if strings.TrimSpace(pc.FinalDiagnosis) == "" {
		return nil, apperrors.InvalidInput("final diagnosis is required", nil)
	}

	input := fmt.Sprintf("Final diagnosis: %s\nSymptom summary: %s\nConsultation notes: %s",
		pc.FinalDiagnosis, pc.SymptomsSummary, pc.ConsultationNotes)
	prescription, err := llm.Generate[model.Prescription](ctx, s.llm, llm.Request{
		Name:        "generate_prescription",
		Instruction: prescriptionInstruction,
		Schema:      prescriptionSchema,
		Input:       input,
	})
	if err != nil {
		return nil, apperrors.GenerationFailed("prescription", err)
	}
	return prescription, nil
}

// ApprovePrescription stores the edited prescription. The consultation must
// already carry a diagnosis.
func (s *Service) ApprovePrescription(ctx context.Context, session *model.Session, id uuid.UUID, prescription *model.Prescription) error {
	if err := s.authorize(ctx, session, id); err != nil {
		return err
	}
	if err := s.validator.Validate(prescription); err != nil {
		return apperrors.InvalidInput(err.Error(), err)
	}

	ok, err := s.consultations.SavePrescription(ctx, id, session.ID, prescription)
	if err != nil {
		return apperrors.PersistenceFailed(err)
	}
	if !ok {
		return apperrors.InvalidTransition("save a diagnosis before approving the prescription")
	}
	s.logger.Info("prescription approved",
		"consultation_id", id.String(), "medications", len(prescription.Medications))
	return nil
}

func (s *Service) authorize(ctx context.Context, session *model.Session, id uuid.UUID) error {
	if err := auth.RequireRole(session, model.RoleProfessional); err != nil {
		return err
	}
	c, err := s.consultations.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("consultation", err)
	}
	if err != nil {
		return apperrors.PersistenceFailed(err)
	}
	return auth.RequireProfessional(session, c)
}
