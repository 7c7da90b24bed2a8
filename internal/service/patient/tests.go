package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

func (s *Service) ListTests(ctx context.Context, session *model.Session) ([]*model.DiagnosticTest, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	tests, err := s.tests.ListByUser(ctx, session.ID)
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return tests, nil
}

func (s *Service) CreateTest(ctx context.Context, session *model.Session, req *model.DiagnosticTestRequest) (*model.DiagnosticTest, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	if err := validateTest(req); err != nil {
		return nil, err
	}

	now := s.now()
	test := &model.DiagnosticTest{
		Base:   model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID: session.ID,
		Name:   strings.TrimSpace(req.Name),
		Result: strings.TrimSpace(req.Result),
		Date:   req.Date,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	return test, nil
}

func (s *Service) UpdateTest(ctx context.Context, session *model.Session, id uuid.UUID, req *model.DiagnosticTestRequest) (*model.DiagnosticTest, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	if err := validateTest(req); err != nil {
		return nil, err
	}

	test := &model.DiagnosticTest{
		Base:   model.Base{ID: id, UpdatedAt: s.now()},
		UserID: session.ID,
		Name:   strings.TrimSpace(req.Name),
		Result: strings.TrimSpace(req.Result),
		Date:   req.Date,
	}
	ok, err := s.tests.Update(ctx, test)
	if err != nil {
		return nil, apperrors.PersistenceFailed(err)
	}
	if !ok {
		return nil, apperrors.NotFound("diagnostic test", nil)
	}
	return test, nil
}

func (s *Service) DeleteTest(ctx context.Context, session *model.Session, id uuid.UUID) error {
	if err := auth.RequireSession(session); err != nil {
		return err
	}
	ok, err := s.tests.Delete(ctx, id, session.ID)
	if err != nil {
		return apperrors.PersistenceFailed(err)
	}
	if !ok {
		return apperrors.NotFound("diagnostic test", nil)
	}
	return nil
}

func validateTest(req *model.DiagnosticTestRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return apperrors.InvalidInput("name is required", nil)
	case strings.TrimSpace(req.Result) == "":
		return apperrors.InvalidInput("result is required", nil)
	case req.Date.IsZero():
		return apperrors.InvalidInput("date is required", nil)
	}
	return nil
}
