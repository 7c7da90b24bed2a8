package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nkosi-ncube/CareIQ/internal/llm"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	"github.com/nkosi-ncube/CareIQ/pkg/datauri"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
)

// MinSymptomsLength is the shortest description Analyze accepts.
const MinSymptomsLength = 10

type AnalyzeInput struct {
	Symptoms        string `json:"symptomsDescription"`
	PhotoDataURI    string `json:"photoDataUri"`
	FollowUpAnswers string `json:"followUpAnswers"`
}

type followUpOutput struct {
	Questions []string `json:"questions" validate:"required,min=3,max=5,dive,required"`
}

type Service struct {
	llm    llm.Client
	users  repository.UserRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewService(client llm.Client, users repository.UserRepository, log *logger.Logger) *Service {
	return &Service{
		llm:    client,
		users:  users,
		logger: log,
		now:    time.Now,
	}
}

// Analyze makes one generative call. There is no fallback result: any
// failure, including output that breaks the schema, is AnalysisFailed.
func (s *Service) Analyze(ctx context.Context, session *model.Session, in AnalyzeInput) (*model.TriageResult, error) {
	if err := auth.RequireRole(session, model.RolePatient); err != nil {
		return nil, err
	}
	symptoms := strings.TrimSpace(in.Symptoms)
	if symptoms == "" {
		return nil, apperrors.InvalidInput("symptoms description is required", nil)
	}
	if utf8.RuneCountInString(symptoms) < MinSymptomsLength {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("symptoms description must be at least %d characters", MinSymptomsLength), nil)
	}

	var images []string
	if in.PhotoDataURI != "" {
		photo, err := datauri.Parse(in.PhotoDataURI)
		if err != nil || !photo.HasType("image") {
			return nil, apperrors.InvalidInput("photo must be a base64 image data URI", err)
		}
		images = append(images, in.PhotoDataURI)
	}

	var input strings.Builder
	fmt.Fprintf(&input, "Symptoms description:\n%s\n", symptoms)
	if images != nil {
		input.WriteString("\nA photo of the symptom is attached. Analyze it carefully.\n")
	}
	if answers := strings.TrimSpace(in.FollowUpAnswers); answers != "" {
		fmt.Fprintf(&input, "\nFollow-up answers:\n%s\n", answers)
	}

	result, err := llm.Generate[model.TriageResult](ctx, s.llm, llm.Request{
		Name:        "analyze_symptoms",
		Instruction: analyzeInstruction,
		Schema:      analyzeSchema,
		Input:       input.String(),
		Images:      images,
	})
	if err != nil {
		return nil, apperrors.AnalysisFailed(err)
	}
	return result, nil
}

// FollowUpQuestions returns 3 to 5 questions tailored to the caller's profile.
func (s *Service) FollowUpQuestions(ctx context.Context, session *model.Session, symptoms string) ([]string, error) {
	if err := auth.RequireRole(session, model.RolePatient); err != nil {
		return nil, err
	}
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return nil, apperrors.InvalidInput("symptoms description is required", nil)
	}

	name, age, conditions := session.Name, "unknown", "none reported"
	user, err := s.users.Get(ctx, session.ID)
	switch {
	case err == nil && user.Patient != nil:
		name = user.Name
		if a := user.Patient.Age(s.now()); a > 0 {
			age = fmt.Sprintf("%d", a)
		}
		if len(user.Patient.KnownConditions) > 0 {
			conditions = strings.Join(user.Patient.KnownConditions, ", ")
		}
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		s.logger.Error(err, "failed to load patient details for follow-up questions")
	}

	input := fmt.Sprintf("Name: %s\nAge: %s\nKnown conditions: %s\nInitial symptoms: %s",
		name, age, conditions, symptoms)

	out, err := llm.Generate[followUpOutput](ctx, s.llm, llm.Request{
		Name:        "follow_up_questions",
		Instruction: followUpInstruction,
		Schema:      followUpSchema,
		Input:       input,
	})
	if err != nil {
		return nil, apperrors.GenerationFailed("follow-up questions", err)
	}
	return out.Questions, nil
}

// FollowUpQuestionsOrNone degrades to no questions so triage can proceed.
// Authorization and input errors are still returned.
func (s *Service) FollowUpQuestionsOrNone(ctx context.Context, session *model.Session, symptoms string) ([]string, error) {
	questions, err := s.FollowUpQuestions(ctx, session, symptoms)
	if err == nil {
		return questions, nil
	}
	if apperrors.Is(err, apperrors.ErrGenerationFailed) {
		s.logger.Warn("follow-up questions unavailable, continuing without them", "error", err.Error())
		return []string{}, nil
	}
	return nil, err
}

func (s *Service) AnalyzeVitals(ctx context.Context, session *model.Session, v model.Vitals) (*model.VitalsAnalysis, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	if v.HeartRate <= 0 || v.BloodOxygen <= 0 {
		return nil, apperrors.InvalidInput("heart rate and blood oxygen are required", nil)
	}

	input := fmt.Sprintf("Heart rate: %.0f BPM\nBlood oxygen: %.0f%%", v.HeartRate, v.BloodOxygen)
	if v.Temperature != nil {
		input += fmt.Sprintf("\nTemperature: %.1f °C", *v.Temperature)
	}

	result, err := llm.Generate[model.VitalsAnalysis](ctx, s.llm, llm.Request{
		Name:        "analyze_vitals",
		Instruction: vitalsInstruction,
		Schema:      vitalsSchema,
		Input:       input,
	})
	if err != nil {
		return nil, apperrors.AnalysisFailed(err)
	}
	return result, nil
}
