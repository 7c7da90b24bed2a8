package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkosi-ncube/CareIQ/internal/llm"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	"github.com/nkosi-ncube/CareIQ/internal/translate"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
	"github.com/nkosi-ncube/CareIQ/pkg/metrics"
)

const (
	entrySeparator = "\n\n---\n\n"
	dateLayout     = "2006-01-02"

	summaryInstruction = `You are a medical assistant. Summarize the patient's consultation history
for the patient: highlight recurring issues, key diagnoses and any patterns,
in plain language.`
	summarySchema = `{"summary": "string"}`
)

type summaryOutput struct {
	Summary string `json:"summary" validate:"required"`
}

type Service struct {
	llm           llm.Client
	translator    translate.Provider
	consultations repository.ConsultationRepository
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewService(
	client llm.Client,
	translator translate.Provider,
	consultations repository.ConsultationRepository,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		llm:           client,
		translator:    translator,
		consultations: consultations,
		metrics:       m,
		logger:        log,
	}
}

// RenderHistory formats entries the way they are given to the model.
func RenderHistory(entries []model.HistoryEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		diagnosis := e.DiagnosisSummary
		if strings.TrimSpace(diagnosis) == "" {
			diagnosis = "N/A"
		}
		parts = append(parts, fmt.Sprintf("Date: %s\nDoctor: %s (%s)\nSymptoms: %s\nDiagnosis: %s",
			e.Date.Format(dateLayout), e.ProfessionalName, e.ProfessionalSpecialty, e.SymptomsSummary, diagnosis))
	}
	return strings.Join(parts, entrySeparator)
}

func (s *Service) SummarizeHistory(ctx context.Context, session *model.Session, entries []model.HistoryEntry) (string, error) {
	if err := auth.RequireSession(session); err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", apperrors.EmptyHistory()
	}

	out, err := llm.Generate[summaryOutput](ctx, s.llm, llm.Request{
		Name:        "summarize_history",
		Instruction: summaryInstruction,
		Schema:      summarySchema,
		Input:       RenderHistory(entries),
	})
	if err != nil {
		return "", apperrors.GenerationFailed("history summary", err)
	}
	return out.Summary, nil
}

// SummarizeMyHistory summarizes the calling patient's completed consultations.
func (s *Service) SummarizeMyHistory(ctx context.Context, session *model.Session) (string, error) {
	if err := auth.RequireRole(session, model.RolePatient); err != nil {
		return "", err
	}
	completed, err := s.consultations.ListCompleted(ctx, session.ID, session.Role)
	if err != nil {
		return "", apperrors.PersistenceFailed(err)
	}

	entries := make([]model.HistoryEntry, 0, len(completed))
	for _, c := range completed {
		entry := model.HistoryEntry{
			Date:                  c.CreatedAt,
			ProfessionalName:      c.ProfessionalName,
			ProfessionalSpecialty: c.ProfessionalSpecialty,
			SymptomsSummary:       c.SymptomsSummary,
		}
		if c.Diagnosis != nil {
			entry.DiagnosisSummary = c.Diagnosis.DiagnosisSummary
		}
		entries = append(entries, entry)
	}
	return s.SummarizeHistory(ctx, session, entries)
}
