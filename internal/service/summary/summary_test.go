package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nkosi-ncube/CareIQ/internal/llm"
	"github.com/nkosi-ncube/CareIQ/internal/llm/llmtest"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository/memory"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
)

var patient = &model.Session{ID: uuid.New(), Role: model.RolePatient, Name: "Thandi Mokoena"}

func TestRenderHistory(t *testing.T) {
	entries := []model.HistoryEntry{
		{
			Date:                  time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
			ProfessionalName:      "Dr Sipho Dlamini",
			ProfessionalSpecialty: model.SpecialtyGeneralPractice,
			SymptomsSummary:       "Cough",
			DiagnosisSummary:      "Bronchitis",
		},
		{
			Date:                  time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC),
			ProfessionalName:      "Dr Anele Khumalo",
			ProfessionalSpecialty: model.SpecialtyCardiology,
			SymptomsSummary:       "Palpitations",
		},
	}

	want := "Date: 2026-01-15\nDoctor: Dr Sipho Dlamini (General Practice)\nSymptoms: Cough\nDiagnosis: Bronchitis" +
		"\n\n---\n\n" +
		"Date: 2026-02-03\nDoctor: Dr Anele Khumalo (Cardiology)\nSymptoms: Palpitations\nDiagnosis: N/A"
	assert.Equal(t, want, RenderHistory(entries))
	assert.Empty(t, RenderHistory(nil))
}

func TestSummarizeHistory(t *testing.T) {
	ctx := context.Background()
	entries := []model.HistoryEntry{{Date: time.Now(), ProfessionalName: "Dr Sipho Dlamini", SymptomsSummary: "Cough"}}

	t.Run("empty history makes no call", func(t *testing.T) {
		client := &llmtest.Client{}
		svc := NewService(client, nil, memory.New().Consultations(), nil, logger.Nop())

		_, err := svc.SummarizeHistory(ctx, patient, nil)
		assert.True(t, apperrors.Is(err, apperrors.ErrEmptyHistory))
		client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	})

	t.Run("summary text", func(t *testing.T) {
		client := &llmtest.Client{}
		client.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
			return req.Name == "summarize_history" && req.Input == RenderHistory(entries)
		})).Return(`{"summary":"One episode of cough."}`, nil)
		svc := NewService(client, nil, memory.New().Consultations(), nil, logger.Nop())

		got, err := svc.SummarizeHistory(ctx, patient, entries)
		require.NoError(t, err)
		assert.Equal(t, "One episode of cough.", got)
	})

	t.Run("blank summary is a generation failure", func(t *testing.T) {
		client := &llmtest.Client{}
		client.On("Complete", mock.Anything, mock.Anything).Return(`{"summary":""}`, nil)
		svc := NewService(client, nil, memory.New().Consultations(), nil, logger.Nop())

		_, err := svc.SummarizeHistory(ctx, patient, entries)
		assert.True(t, apperrors.Is(err, apperrors.ErrGenerationFailed))
	})
}

func TestSummarizeMyHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	professionalID := uuid.New()
	require.NoError(t, store.Users().Create(ctx, &model.User{
		Base:  model.Base{ID: professionalID},
		Name:  "Dr Sipho Dlamini",
		Email: "sipho@example.com",
		Role:  model.RoleProfessional,
		Professional: &model.ProfessionalProfile{
			PracticeNumber: "PR-1001",
			Specialty:      model.SpecialtyGeneralPractice,
		},
	}))

	client := &llmtest.Client{}
	svc := NewService(client, nil, store.Consultations(), nil, logger.Nop())

	_, err := svc.SummarizeMyHistory(ctx, patient)
	assert.True(t, apperrors.Is(err, apperrors.ErrEmptyHistory), "no completed consultations")

	created := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Consultations().Create(ctx, &model.Consultation{
		Base:            model.Base{ID: uuid.New(), CreatedAt: created, UpdatedAt: created},
		PatientID:       patient.ID,
		ProfessionalID:  professionalID,
		Status:          model.StatusCompleted,
		SymptomsSummary: "Sore throat",
		Diagnosis: &model.Diagnosis{
			DiagnosisSummary:     "Tonsillitis",
			PotentialConditions:  []string{"Tonsillitis"},
			RecommendedNextSteps: "Rest",
		},
	}))

	client.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Input == "Date: 2026-04-02\nDoctor: Dr Sipho Dlamini (General Practice)\nSymptoms: Sore throat\nDiagnosis: Tonsillitis"
	})).Return(`{"summary":"A single episode of tonsillitis."}`, nil)

	got, err := svc.SummarizeMyHistory(ctx, patient)
	require.NoError(t, err)
	assert.Equal(t, "A single episode of tonsillitis.", got)

	_, err = svc.SummarizeMyHistory(ctx, &model.Session{ID: professionalID, Role: model.RoleProfessional})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestSummarizeHistoryProviderError(t *testing.T) {
	client := &llmtest.Client{}
	client.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))
	svc := NewService(client, nil, memory.New().Consultations(), nil, logger.Nop())

	_, err := svc.SummarizeHistory(context.Background(), patient, []model.HistoryEntry{{SymptomsSummary: "Cough"}})
	assert.True(t, apperrors.Is(err, apperrors.ErrGenerationFailed))
}
