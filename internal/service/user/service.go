package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProfile(ctx context.Context, session *model.Session) (*model.User, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	return s.get(ctx, session.ID)
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get user: %w", err))
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields. Notification and language
// preferences exist only on patient profiles.
func (s *Service) UpdateProfile(ctx context.Context, session *model.Session, req *model.UpdateProfileRequest) (*model.User, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}

	user, err := s.get(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.NotificationsEnabled != nil || req.PreferredLanguage != nil {
		if user.Patient == nil {
			return nil, apperrors.InvalidInput("notification and language preferences apply to patients only", nil)
		}
		if req.NotificationsEnabled != nil {
			user.Patient.NotificationsEnabled = *req.NotificationsEnabled
		}
		if req.PreferredLanguage != nil {
			user.Patient.PreferredLanguage = *req.PreferredLanguage
		}
	}

	if err := user.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error(), nil)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered", nil)
		}
		return nil, apperrors.PersistenceFailed(fmt.Errorf("failed to update user: %w", err))
	}
	return user, nil
}
