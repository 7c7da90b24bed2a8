package consultation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/cache"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	"github.com/nkosi-ncube/CareIQ/internal/service/notification"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
	"github.com/nkosi-ncube/CareIQ/pkg/metrics"
	"github.com/nkosi-ncube/CareIQ/pkg/validator"
)

type Service struct {
	consultations repository.ConsultationRepository
	users         repository.UserRepository
	views         *cache.Views
	notifier      notification.Notifier
	validator     validator.Validator
	metrics       *metrics.Metrics
	logger        *logger.Logger
	now           func() time.Time
}

func NewService(
	consultations repository.ConsultationRepository,
	users repository.UserRepository,
	views *cache.Views,
	notifier notification.Notifier,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		consultations: consultations,
		users:         users,
		views:         views,
		notifier:      notifier,
		validator:     validator.New(),
		metrics:       m,
		logger:        log,
		now:           time.Now,
	}
}

// Book creates a waiting consultation between the calling patient and the
// chosen professional.
func (s *Service) Book(ctx context.Context, session *model.Session, req *model.BookRequest) (*model.Consultation, error) {
	if err := auth.RequireRole(session, model.RolePatient); err != nil {
		return nil, err
	}
	summary := strings.TrimSpace(req.SymptomsSummary)
	if summary == "" {
		return nil, apperrors.InvalidInput("symptomsSummary is required", nil)
	}
	if err := s.validator.Validate(req.Triage); err != nil {
		return nil, apperrors.InvalidInput("invalid triage result: "+err.Error(), err)
	}

	professional, err := s.users.Get(ctx, req.ProfessionalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("professional", err)
	}
	if err != nil {
		return nil, apperrors.PersistenceFailed(fmt.Errorf("failed to load professional: %w", err))
	}
	if professional.Role != model.RoleProfessional {
		return nil, apperrors.NotFound("professional", nil)
	}

	now := s.now()
	c := &model.Consultation{
		Base:            model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PatientID:       session.ID,
		ProfessionalID:  professional.ID,
		Status:          model.StatusWaiting,
		SymptomsSummary: summary,
		Triage:          req.Triage,
	}
	if err := s.consultations.Create(ctx, c); err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}

	s.logger.Info("consultation booked",
		"consultation_id", c.ID.String(),
		"professional_id", c.ProfessionalID.String(),
		"urgency", string(c.Triage.UrgencyLevel))
	s.changed(ctx, c)
	return c, nil
}

func (s *Service) Start(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Consultation, error) {
	return s.transition(ctx, session, id, []model.ConsultationStatus{model.StatusWaiting}, model.StatusActive)
}

func (s *Service) Complete(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Consultation, error) {
	return s.transition(ctx, session, id, []model.ConsultationStatus{model.StatusActive}, model.StatusCompleted)
}

func (s *Service) Cancel(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Consultation, error) {
	return s.transition(ctx, session, id,
		[]model.ConsultationStatus{model.StatusWaiting, model.StatusActive}, model.StatusCancelled)
}

// transition applies one conditional write. The status read by load is only
// used for the error message; the write itself decides.
func (s *Service) transition(
	ctx context.Context,
	session *model.Session,
	id uuid.UUID,
	from []model.ConsultationStatus,
	to model.ConsultationStatus,
) (*model.Consultation, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireProfessional(session, c); err != nil {
		return nil, err
	}

	ok, err := s.consultations.Transition(ctx, id, session.ID, from, to)
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	s.metrics.ObserveTransition(string(to), ok)
	if !ok {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("consultation is %s and cannot become %s", c.Status, to))
	}

	c.Status = to
	c.UpdatedAt = s.now()
	s.logger.Info("consultation status changed",
		"consultation_id", c.ID.String(), "status", string(to))
	s.changed(ctx, c)
	return c, nil
}

func (s *Service) changed(ctx context.Context, c *model.Consultation) {
	s.views.Invalidate(ctx, c.ID, c.ProfessionalID)
	s.notifier.ConsultationChanged(ctx, c)
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	c, err := s.consultations.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("consultation", err)
	}
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return c, nil
}

// ListWaitingFor returns the professional's waiting consultations, most
// urgent first and oldest first within an urgency.
func (s *Service) ListWaitingFor(ctx context.Context, session *model.Session, professionalID uuid.UUID) ([]*model.QueueEntry, error) {
	if err := auth.RequireRole(session, model.RoleProfessional); err != nil {
		return nil, err
	}
	if session.ID != professionalID {
		return nil, apperrors.Unauthorized("queue belongs to another professional")
	}

	if entries, ok := s.views.Queue(professionalID); ok {
		return entries, nil
	}

	entries, err := s.consultations.ListWaiting(ctx, professionalID)
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	SortQueue(entries)
	s.views.SetQueue(professionalID, entries)
	return entries, nil
}

// SortQueue orders by urgency rank then booking time, keeping ties stable.
func SortQueue(entries []*model.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Triage.UrgencyLevel.Rank(), entries[j].Triage.UrgencyLevel.Rank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

func (s *Service) WaitingRoom(ctx context.Context, session *model.Session, id uuid.UUID) (*model.WaitingRoom, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}

	if wr, ok := s.views.WaitingRoom(id); ok {
		if wr.PatientID != session.ID && wr.ProfessionalID != session.ID {
			return nil, apperrors.Unauthorized("not a party to this consultation")
		}
		return wr, nil
	}

	detail, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	wr := &model.WaitingRoom{
		ID:                    detail.ID,
		PatientID:             detail.PatientID,
		ProfessionalID:        detail.ProfessionalID,
		Status:                detail.Status,
		SymptomsSummary:       detail.SymptomsSummary,
		PatientName:           detail.PatientName,
		ProfessionalName:      detail.ProfessionalName,
		ProfessionalSpecialty: detail.ProfessionalSpecialty,
		UpdatedAt:             detail.UpdatedAt,
	}
	s.views.SetWaitingRoom(wr)
	return wr, nil
}

// Get returns the full consultation to either bound party.
func (s *Service) Get(ctx context.Context, session *model.Session, id uuid.UUID) (*model.ConsultationDetail, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	detail, err := s.consultations.GetDetail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("consultation", err)
	}
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	if err := auth.RequireParty(session, &detail.Consultation); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Service) SaveNotes(ctx context.Context, session *model.Session, id uuid.UUID, notes string) error {
	c, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireProfessional(session, c); err != nil {
		return err
	}

	ok, err := s.consultations.SaveNotes(ctx, id, session.ID, notes)
	if err != nil {
		return apperrors.PersistenceFailed(err)
	}
	if !ok {
		return apperrors.InvalidTransition("notes can only be saved while the consultation is active")
	}
	return nil
}

// History lists the caller's completed consultations, newest first.
func (s *Service) History(ctx context.Context, session *model.Session) ([]*model.ConsultationDetail, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	list, err := s.consultations.ListCompleted(ctx, session.ID, session.Role)
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return list, nil
}

// Prescriptions lists the calling patient's consultations that carry a prescription.
func (s *Service) Prescriptions(ctx context.Context, session *model.Session) ([]*model.ConsultationDetail, error) {
	if err := auth.RequireRole(session, model.RolePatient); err != nil {
		return nil, err
	}
	list, err := s.consultations.ListWithPrescription(ctx, session.ID)
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return list, nil
}
