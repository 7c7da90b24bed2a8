package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
)

type alertRepo struct{ s *Store }

func (r alertRepo) Create(_ context.Context, alert *model.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *alert
	r.s.alerts[alert.ID] = &copied
	return nil
}

func (r alertRepo) CreateBatch(ctx context.Context, alerts []*model.Alert) error {
	for _, a := range alerts {
		if err := r.Create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r alertRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Alert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Alert{}
	for _, a := range r.s.alerts {
		if a.UserID == userID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r alertRepo) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok || a.UserID != userID {
		return false, nil
	}
	a.Status = model.AlertRead
	a.UpdatedAt = time.Now().UTC()
	return true, nil
}

type testRepo struct{ s *Store }

func (r testRepo) Create(_ context.Context, test *model.DiagnosticTest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tests[test.ID]; ok {
		return repository.ErrDuplicate
	}
	copied := *test
	r.s.tests[test.ID] = &copied
	return nil
}

func (r testRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.DiagnosticTest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.DiagnosticTest{}
	for _, t := range r.s.tests {
		if t.UserID == userID {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r testRepo) Update(_ context.Context, test *model.DiagnosticTest) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tests[test.ID]
	if !ok || existing.UserID != test.UserID {
		return false, nil
	}
	test.CreatedAt = existing.CreatedAt
	copied := *test
	r.s.tests[test.ID] = &copied
	return true, nil
}

func (r testRepo) Delete(_ context.Context, id, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tests[id]
	if !ok || existing.UserID != userID {
		return false, nil
	}
	delete(r.s.tests, id)
	return true, nil
}
