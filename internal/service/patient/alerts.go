package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

var sampleAlerts = []string{
	"Your annual check-up is due next month.",
	"New lab results are available for review.",
	"Reminder: refill your prescription within 5 days.",
}

// Service manages the records a user keeps about themselves: alerts and
// diagnostic test results. Every operation is scoped to the caller.
type Service struct {
	alerts repository.AlertRepository
	tests  repository.DiagnosticTestRepository
	now    func() time.Time
}

func NewService(alerts repository.AlertRepository, tests repository.DiagnosticTestRepository) *Service {
	return &Service{alerts: alerts, tests: tests, now: time.Now}
}

func (s *Service) ListAlerts(ctx context.Context, session *model.Session) ([]*model.Alert, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	alerts, err := s.alerts.ListByUser(ctx, session.ID)
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return alerts, nil
}

// SeedAlerts gives a new account a few unread sample alerts.
func (s *Service) SeedAlerts(ctx context.Context, session *model.Session) ([]*model.Alert, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}

	now := s.now()
	alerts := make([]*model.Alert, 0, len(sampleAlerts))
	for i, title := range sampleAlerts {
		created := now.Add(time.Duration(i) * time.Millisecond)
		alerts = append(alerts, &model.Alert{
			Base:   model.Base{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
			UserID: session.ID,
			Title:  title,
			Status: model.AlertUnread,
		})
	}
	if err := s.alerts.CreateBatch(ctx, alerts); err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return alerts, nil
}

func (s *Service) MarkAlertRead(ctx context.Context, session *model.Session, id uuid.UUID) error {
	if err := auth.RequireSession(session); err != nil {
		return err
	}
	ok, err := s.alerts.MarkRead(ctx, id, session.ID)
	if err != nil {
		return apperrors.PersistenceFailed(err)
	}
	if !ok {
		return apperrors.NotFound("alert", nil)
	}
	return nil
}
