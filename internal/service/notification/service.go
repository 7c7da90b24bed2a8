package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/email"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
)

// Notifier tells a patient that their consultation changed.
type Notifier interface {
	ConsultationChanged(ctx context.Context, c *model.Consultation)
}

// DefaultSendTimeout bounds one email delivery.
const DefaultSendTimeout = 30 * time.Second

type Service struct {
	users       repository.UserRepository
	alerts      repository.AlertRepository
	emailSvc    email.Service
	logger      *logger.Logger
	now         func() time.Time
	sendTimeout time.Duration
	pending     sync.WaitGroup
}

func NewService(users repository.UserRepository, alerts repository.AlertRepository, emailSvc email.Service, log *logger.Logger) *Service {
	return &Service{
		users:       users,
		alerts:      alerts,
		emailSvc:    emailSvc,
		logger:      log,
		now:         time.Now,
		sendTimeout: DefaultSendTimeout,
	}
}

func title(status model.ConsultationStatus) string {
	switch status {
	case model.StatusActive:
		return "Your consultation has started"
	case model.StatusCompleted:
		return "Your consultation is complete"
	case model.StatusCancelled:
		return "Your consultation was cancelled"
	default:
		return "You are in the waiting room"
	}
}

// ConsultationChanged records an alert for the patient and emails them when
// they opted in. The email is sent in the background, detached from ctx's
// cancellation. Failures are logged only.
func (s *Service) ConsultationChanged(ctx context.Context, c *model.Consultation) {
	now := s.now()
	alert := &model.Alert{
		Base:   model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID: c.PatientID,
		Title:  title(c.Status),
		Status: model.AlertUnread,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		s.logger.Error(err, "failed to create consultation alert",
			"consultation_id", c.ID.String(), "status", string(c.Status))
	}

	patient, err := s.users.Get(ctx, c.PatientID)
	if err != nil {
		s.logger.Error(err, "failed to load patient for notification",
			"consultation_id", c.ID.String())
		return
	}
	if patient.Patient == nil || !patient.Patient.NotificationsEnabled {
		return
	}

	body := fmt.Sprintf("Hi %s,\n\n%s.\n\nConsultation reference: %s\n", patient.Name, alert.Title, c.ID)
	s.send(context.WithoutCancel(ctx), c.ID, patient.Email, alert.Title, body)
}

func (s *Service) send(ctx context.Context, consultationID uuid.UUID, to, subject, body string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
		if err := s.emailSvc.Send(ctx, to, subject, body); err != nil {
			s.logger.Error(err, "failed to email consultation update",
				"consultation_id", consultationID.String())
		}
	}()
}

// Drain waits for in-flight emails, giving up when ctx is done.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
