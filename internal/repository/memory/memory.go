// Package memory is an in-process implementation of the repository
// interfaces with the same conditional-write semantics as postgres. Service
// tests run against it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
)

type Store struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*model.User
	consultations map[uuid.UUID]*model.Consultation
	alerts        map[uuid.UUID]*model.Alert
	tests         map[uuid.UUID]*model.DiagnosticTest
}

func New() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*model.User),
		consultations: make(map[uuid.UUID]*model.Consultation),
		alerts:        make(map[uuid.UUID]*model.Alert),
		tests:         make(map[uuid.UUID]*model.DiagnosticTest),
	}
}

func (s *Store) Users() repository.UserRepository                     { return userRepo{s} }
func (s *Store) Consultations() repository.ConsultationRepository     { return consultationRepo{s} }
func (s *Store) Alerts() repository.AlertRepository                   { return alertRepo{s} }
func (s *Store) DiagnosticTests() repository.DiagnosticTestRepository { return testRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	copied := *user
	copied.Email = strings.ToLower(user.Email)
	r.s.users[user.ID] = &copied
	return nil
}

func (r userRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now().UTC()
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r userRepo) ListProfessionals(_ context.Context, specialties []model.Specialty) ([]*model.Professional, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[model.Specialty]bool, len(specialties))
	for _, sp := range specialties {
		wanted[sp] = true
	}

	out := []*model.Professional{}
	for _, u := range r.s.users {
		if u.Role != model.RoleProfessional {
			continue
		}
		if len(wanted) > 0 && !wanted[u.Specialty()] {
			continue
		}
		out = append(out, &model.Professional{ID: u.ID, Name: u.Name, Specialty: u.Specialty()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
