package consultation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkosi-ncube/CareIQ/internal/cache"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository/memory"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
)

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []model.ConsultationStatus
}

func (n *recordingNotifier) ConsultationChanged(_ context.Context, c *model.Consultation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, c.Status)
}

func (n *recordingNotifier) seen() []model.ConsultationStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.ConsultationStatus(nil), n.statuses...)
}

type fixture struct {
	svc          *Service
	store        *memory.Store
	notifier     *recordingNotifier
	patient      *model.Session
	professional *model.Session
	other        *model.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	patient := &model.User{
		Base:    model.Base{ID: uuid.New()},
		Name:    "Thandi Mokoena",
		Email:   "thandi@example.com",
		Role:    model.RolePatient,
		Patient: &model.PatientProfile{PaymentMethod: model.PaymentCash},
	}
	professional := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Name:  "Dr Sipho Dlamini",
		Email: "sipho@example.com",
		Role:  model.RoleProfessional,
		Professional: &model.ProfessionalProfile{
			PracticeNumber: "PR-1001",
			Specialty:      model.SpecialtyGeneralPractice,
		},
	}
	other := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Name:  "Dr Anele Khumalo",
		Email: "anele@example.com",
		Role:  model.RoleProfessional,
		Professional: &model.ProfessionalProfile{
			PracticeNumber: "PR-1002",
			Specialty:      model.SpecialtyCardiology,
		},
	}
	for _, u := range []*model.User{patient, professional, other} {
		require.NoError(t, store.Users().Create(ctx, u))
	}

	notifier := &recordingNotifier{}
	views := cache.NewViews(time.Minute, time.Minute, nil, logger.Nop(), nil)
	svc := NewService(store.Consultations(), store.Users(), views, notifier, nil, logger.Nop())

	return &fixture{
		svc:          svc,
		store:        store,
		notifier:     notifier,
		patient:      &model.Session{ID: patient.ID, Role: model.RolePatient, Name: patient.Name},
		professional: &model.Session{ID: professional.ID, Role: model.RoleProfessional, Name: professional.Name},
		other:        &model.Session{ID: other.ID, Role: model.RoleProfessional, Name: other.Name},
	}
}

func triage(urgency model.Urgency) model.TriageResult {
	confidence := 0.8
	return model.TriageResult{
		SuggestedProfessionals: []string{"General Practice"},
		ConfidenceLevel:        &confidence,
		UrgencyLevel:           urgency,
		RecommendedAction:      "See a doctor",
	}
}

func (f *fixture) book(t *testing.T, urgency model.Urgency) *model.Consultation {
	t.Helper()
	c, err := f.svc.Book(context.Background(), f.patient, &model.BookRequest{
		ProfessionalID:  f.professional.ID,
		SymptomsSummary: "Persistent cough for two weeks",
		Triage:          triage(urgency),
	})
	require.NoError(t, err)
	return c
}

func TestBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("creates a waiting consultation", func(t *testing.T) {
		c := f.book(t, model.UrgencyMedium)
		assert.Equal(t, model.StatusWaiting, c.Status)
		assert.Equal(t, f.patient.ID, c.PatientID)
		assert.Equal(t, f.professional.ID, c.ProfessionalID)
		assert.Nil(t, c.Diagnosis)
		assert.Contains(t, f.notifier.seen(), model.StatusWaiting)
	})

	t.Run("professionals cannot book", func(t *testing.T) {
		_, err := f.svc.Book(ctx, f.professional, &model.BookRequest{
			ProfessionalID:  f.other.ID,
			SymptomsSummary: "Headache",
			Triage:          triage(model.UrgencyLow),
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("blank summary is rejected", func(t *testing.T) {
		_, err := f.svc.Book(ctx, f.patient, &model.BookRequest{
			ProfessionalID:  f.professional.ID,
			SymptomsSummary: "   ",
			Triage:          triage(model.UrgencyLow),
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("invalid triage is rejected", func(t *testing.T) {
		bad := triage(model.UrgencyLow)
		bad.UrgencyLevel = "Critical"
		_, err := f.svc.Book(ctx, f.patient, &model.BookRequest{
			ProfessionalID:  f.professional.ID,
			SymptomsSummary: "Headache",
			Triage:          bad,
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("unknown professional", func(t *testing.T) {
		_, err := f.svc.Book(ctx, f.patient, &model.BookRequest{
			ProfessionalID:  uuid.New(),
			SymptomsSummary: "Headache",
			Triage:          triage(model.UrgencyLow),
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("a patient id is not a professional", func(t *testing.T) {
		_, err := f.svc.Book(ctx, f.patient, &model.BookRequest{
			ProfessionalID:  f.patient.ID,
			SymptomsSummary: "Headache",
			Triage:          triage(model.UrgencyLow),
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.book(t, model.UrgencyHigh)

	_, err := f.svc.Complete(ctx, f.professional, c.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition), "waiting cannot complete")

	started, err := f.svc.Start(ctx, f.professional, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, started.Status)

	_, err = f.svc.Start(ctx, f.professional, c.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition), "active cannot start again")

	require.NoError(t, f.svc.SaveNotes(ctx, f.professional, c.ID, "Chest clear on auscultation"))

	completed, err := f.svc.Complete(ctx, f.professional, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)

	_, err = f.svc.Cancel(ctx, f.professional, c.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition), "completed is terminal")

	err = f.svc.SaveNotes(ctx, f.professional, c.ID, "late notes")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	stored, err := f.store.Consultations().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, "Chest clear on auscultation", *stored.Notes)

	assert.Equal(t, []model.ConsultationStatus{
		model.StatusWaiting, model.StatusActive, model.StatusCompleted,
	}, f.notifier.seen())
}

func TestTransitionGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.book(t, model.UrgencyLow)

	tests := []struct {
		name    string
		session *model.Session
		code    apperrors.ErrorCode
	}{
		{"no session", nil, apperrors.ErrUnauthorized},
		{"patient", f.patient, apperrors.ErrUnauthorized},
		{"unassigned professional", f.other, apperrors.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Start(ctx, tt.session, c.ID)
			assert.True(t, apperrors.Is(err, tt.code), "got %v", err)
		})
	}

	_, err := f.svc.Start(ctx, f.professional, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	stored, err := f.store.Consultations().Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, stored.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	waiting := f.book(t, model.UrgencyLow)
	cancelled, err := f.svc.Cancel(ctx, f.professional, waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	_, err = f.svc.Start(ctx, f.professional, waiting.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))

	active := f.book(t, model.UrgencyLow)
	_, err = f.svc.Start(ctx, f.professional, active.ID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, f.professional, active.ID)
	require.NoError(t, err)
}

func TestConcurrentStart(t *testing.T) {
	f := newFixture(t)
	c := f.book(t, model.UrgencyMedium)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Start(context.Background(), f.professional, c.ID)
			switch {
			case err == nil:
				succeeded.Add(1)
			case apperrors.Is(err, apperrors.ErrInvalidTransition):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())
}

func TestListWaitingFor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	f.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	lowOld := f.book(t, model.UrgencyLow)
	high := f.book(t, model.UrgencyHigh)
	medium := f.book(t, model.UrgencyMedium)
	lowNew := f.book(t, model.UrgencyLow)

	queue, err := f.svc.ListWaitingFor(ctx, f.professional, f.professional.ID)
	require.NoError(t, err)
	require.Len(t, queue, 4)
	ids := []uuid.UUID{queue[0].ID, queue[1].ID, queue[2].ID, queue[3].ID}
	assert.Equal(t, []uuid.UUID{high.ID, medium.ID, lowOld.ID, lowNew.ID}, ids)
	assert.Equal(t, "Thandi Mokoena", queue[0].PatientName)

	t.Run("started consultations leave the queue", func(t *testing.T) {
		_, err := f.svc.Start(ctx, f.professional, high.ID)
		require.NoError(t, err)

		queue, err := f.svc.ListWaitingFor(ctx, f.professional, f.professional.ID)
		require.NoError(t, err)
		require.Len(t, queue, 3)
		assert.Equal(t, medium.ID, queue[0].ID)
	})

	t.Run("another professional's queue", func(t *testing.T) {
		_, err := f.svc.ListWaitingFor(ctx, f.other, f.professional.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("patients have no queue", func(t *testing.T) {
		_, err := f.svc.ListWaitingFor(ctx, f.patient, f.patient.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})
}

func TestSortQueueUnknownUrgencyLast(t *testing.T) {
	now := time.Now()
	entries := []*model.QueueEntry{
		{ID: uuid.New(), Triage: model.TriageResult{UrgencyLevel: "Unknown"}, CreatedAt: now},
		{ID: uuid.New(), Triage: model.TriageResult{UrgencyLevel: model.UrgencyLow}, CreatedAt: now.Add(time.Hour)},
	}
	unknown := entries[0].ID

	SortQueue(entries)
	assert.Equal(t, unknown, entries[1].ID)
}

func TestWaitingRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.book(t, model.UrgencyMedium)

	wr, err := f.svc.WaitingRoom(ctx, f.patient, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusWaiting, wr.Status)
	assert.Equal(t, "Dr Sipho Dlamini", wr.ProfessionalName)
	assert.Equal(t, model.SpecialtyGeneralPractice, wr.ProfessionalSpecialty)

	t.Run("cached view is still scoped to the parties", func(t *testing.T) {
		_, err := f.svc.WaitingRoom(ctx, f.other, c.ID)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("transition invalidates the cached view", func(t *testing.T) {
		_, err := f.svc.Start(ctx, f.professional, c.ID)
		require.NoError(t, err)

		wr, err := f.svc.WaitingRoom(ctx, f.patient, c.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusActive, wr.Status)
	})

	t.Run("unknown consultation", func(t *testing.T) {
		_, err := f.svc.WaitingRoom(ctx, f.patient, uuid.New())
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.book(t, model.UrgencyLow)

	for _, s := range []*model.Session{f.patient, f.professional} {
		detail, err := f.svc.Get(ctx, s, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, detail.ID)
		assert.Equal(t, "Thandi Mokoena", detail.PatientName)
	}

	_, err := f.svc.Get(ctx, f.other, c.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestHistoryAndPrescriptions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := f.book(t, model.UrgencyLow)
	_, err := f.svc.Start(ctx, f.professional, done.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, f.professional, done.ID)
	require.NoError(t, err)
	f.book(t, model.UrgencyHigh)

	for _, s := range []*model.Session{f.patient, f.professional} {
		history, err := f.svc.History(ctx, s)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, done.ID, history[0].ID)
	}

	history, err := f.svc.History(ctx, f.other)
	require.NoError(t, err)
	assert.Empty(t, history)

	prescriptions, err := f.svc.Prescriptions(ctx, f.patient)
	require.NoError(t, err)
	assert.Empty(t, prescriptions)

	_, err = f.svc.Prescriptions(ctx, f.professional)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}
