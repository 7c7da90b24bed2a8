package matcher

import (
	"context"
	"fmt"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

// Result distinguishes "nobody matched" from a failed lookup.
type Result struct {
	Matches        []*model.Professional `json:"matches"`
	NoMatchesFound bool                  `json:"noMatchesFound"`
}

type Service struct {
	users             repository.UserRepository
	filterBySpecialty bool
}

// NewService returns a matcher. With filterBySpecialty off every hcp user is
// offered regardless of the suggested specialties.
func NewService(users repository.UserRepository, filterBySpecialty bool) *Service {
	return &Service{users: users, filterBySpecialty: filterBySpecialty}
}

func (s *Service) Match(ctx context.Context, session *model.Session, specialties []string) (*Result, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}

	var filter []model.Specialty
	if s.filterBySpecialty {
		for _, name := range specialties {
			if sp := model.Specialty(name); sp.Valid() {
				filter = append(filter, sp)
			}
		}
		if len(filter) == 0 {
			return &Result{Matches: []*model.Professional{}, NoMatchesFound: true}, nil
		}
	}

	professionals, err := s.users.ListProfessionals(ctx, filter)
	if err != nil {
		return nil, apperrors.PersistenceFailed(fmt.Errorf("failed to list professionals: %w", err))
	}
	if len(professionals) == 0 {
		return &Result{Matches: []*model.Professional{}, NoMatchesFound: true}, nil
	}
	return &Result{Matches: professionals}, nil
}
