package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/pkg/auth"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
	"github.com/nkosi-ncube/CareIQ/pkg/security"
)

// LoginResult carries the signed session token for the cookie.
type LoginResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"-"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	jwtSvc auth.JWTService
	logger *logger.Logger
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, jwtSvc auth.JWTService, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		jwtSvc: jwtSvc,
		logger: log,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	user := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Role:  req.Role,
	}

	switch req.Role {
	case model.RolePatient:
		user.Patient = &model.PatientProfile{
			PaymentMethod:        req.PaymentMethod,
			MedicalAid:           req.MedicalAid,
			NotificationsEnabled: true,
			PreferredLanguage:    "en",
			DateOfBirth:          req.DateOfBirth,
			KnownConditions:      req.KnownConditions,
		}
	case model.RoleProfessional:
		user.Professional = &model.ProfessionalProfile{
			PracticeNumber: strings.TrimSpace(req.PracticeNumber),
			Specialty:      req.Specialty,
		}
	}

	if err := user.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error(), nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.InvalidInput("password is too short", err)
		}
		return nil, apperrors.Internal(err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered", nil)
		}
		return nil, apperrors.PersistenceFailed(fmt.Errorf("failed to create user: %w", err))
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "role", string(user.Role))
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(fmt.Errorf("failed to load user: %w", err))
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if err := security.CompareOrBurn(s.hasher, hash, password); err != nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwtSvc.GenerateToken(user.ID, user.Name, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveSession returns nil for a missing, malformed or expired token.
func (s *Service) ResolveSession(token string) *model.Session {
	if token == "" {
		return nil
	}
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		s.logger.Debug("rejected session token", "reason", err.Error())
		return nil
	}

	role := model.Role(claims.Role)
	if !role.Valid() {
		return nil
	}
	return &model.Session{
		ID:    claims.UserID,
		Role:  role,
		Name:  claims.Name,
		Email: claims.Email,
	}
}
