package patient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository/memory"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

func newService() *Service {
	store := memory.New()
	return NewService(store.Alerts(), store.DiagnosticTests())
}

func TestAlerts(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	owner := &model.Session{ID: uuid.New(), Role: model.RolePatient}
	stranger := &model.Session{ID: uuid.New(), Role: model.RolePatient}

	seeded, err := svc.SeedAlerts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, seeded, len(sampleAlerts))
	for _, a := range seeded {
		assert.Equal(t, model.AlertUnread, a.Status)
		assert.Equal(t, owner.ID, a.UserID)
	}

	alerts, err := svc.ListAlerts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, alerts, len(sampleAlerts))
	assert.Equal(t, sampleAlerts[len(sampleAlerts)-1], alerts[0].Title, "newest first")

	others, err := svc.ListAlerts(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, others)

	err = svc.MarkAlertRead(ctx, stranger, seeded[0].ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, svc.MarkAlertRead(ctx, owner, seeded[0].ID))
	alerts, err = svc.ListAlerts(ctx, owner)
	require.NoError(t, err)
	for _, a := range alerts {
		if a.ID == seeded[0].ID {
			assert.Equal(t, model.AlertRead, a.Status)
		}
	}

	_, err = svc.ListAlerts(ctx, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestDiagnosticTests(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	owner := &model.Session{ID: uuid.New(), Role: model.RolePatient}
	stranger := &model.Session{ID: uuid.New(), Role: model.RolePatient}
	date := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	created, err := svc.CreateTest(ctx, owner, &model.DiagnosticTestRequest{
		Name: " Full blood count ", Result: "Normal", Date: date,
	})
	require.NoError(t, err)
	assert.Equal(t, "Full blood count", created.Name)

	invalid := []*model.DiagnosticTestRequest{
		{Name: "", Result: "Normal", Date: date},
		{Name: "HbA1c", Result: " ", Date: date},
		{Name: "HbA1c", Result: "6.1%"},
	}
	for _, req := range invalid {
		_, err := svc.CreateTest(ctx, owner, req)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	}

	update := &model.DiagnosticTestRequest{Name: "Full blood count", Result: "Low haemoglobin", Date: date}
	_, err = svc.UpdateTest(ctx, stranger, created.ID, update)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound), "owner scoped")

	updated, err := svc.UpdateTest(ctx, owner, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Low haemoglobin", updated.Result)

	tests, err := svc.ListTests(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, "Low haemoglobin", tests[0].Result)

	err = svc.DeleteTest(ctx, stranger, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, svc.DeleteTest(ctx, owner, created.ID))
	err = svc.DeleteTest(ctx, owner, created.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
