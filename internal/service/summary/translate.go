package summary

import (
	"context"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

// Translate translates every non-blank leaf of the bundle concurrently.
// A field whose translation fails keeps its original text; blank fields are
// never sent. The returned bundle has the same shape as the input.
func (s *Service) Translate(ctx context.Context, session *model.Session, bundle model.TranslationBundle, target string) (*model.TranslationBundle, error) {
	if err := auth.RequireSession(session); err != nil {
		return nil, err
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, apperrors.InvalidInput("targetLanguage is required", nil)
	}

	out := cloneBundle(bundle)

	var wg conc.WaitGroup
	for _, leaf := range leaves(out) {
		if strings.TrimSpace(*leaf) == "" {
			continue
		}
		wg.Go(func() {
			translated, err := s.translator.Translate(ctx, *leaf, target)
			s.metrics.ObserveTranslation(err != nil)
			if err != nil {
				s.logger.Warn("translation failed, keeping original text",
					"target", target, "error", err.Error())
				return
			}
			*leaf = translated
		})
	}
	wg.Wait()

	return out, nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBundle(b model.TranslationBundle) *model.TranslationBundle {
	out := &model.TranslationBundle{
		SymptomsSummary:      cloneString(b.SymptomsSummary),
		DiagnosisSummary:     cloneString(b.DiagnosisSummary),
		RecommendedNextSteps: cloneString(b.RecommendedNextSteps),
		PrescriptionNotes:    cloneString(b.PrescriptionNotes),
	}
	if b.PotentialConditions != nil {
		out.PotentialConditions = append(make([]string, 0, len(b.PotentialConditions)), b.PotentialConditions...)
	}
	if b.Medications != nil {
		out.Medications = append(make([]model.Medication, 0, len(b.Medications)), b.Medications...)
	}
	return out
}

// leaves returns a pointer to every string in b. Each pointer is distinct,
// so workers never write the same memory.
func leaves(b *model.TranslationBundle) []*string {
	var out []*string
	for _, p := range []*string{b.SymptomsSummary, b.DiagnosisSummary, b.RecommendedNextSteps, b.PrescriptionNotes} {
		if p != nil {
			out = append(out, p)
		}
	}
	for i := range b.PotentialConditions {
		out = append(out, &b.PotentialConditions[i])
	}
	for i := range b.Medications {
		m := &b.Medications[i]
		out = append(out, &m.Name, &m.Dosage, &m.Frequency, &m.Reason)
	}
	return out
}
