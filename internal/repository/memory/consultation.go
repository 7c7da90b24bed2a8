package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository"
)

type consultationRepo struct{ s *Store }

func (r consultationRepo) Create(_ context.Context, c *model.Consultation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.consultations[c.ID]; ok {
		return repository.ErrDuplicate
	}
	copied := *c
	r.s.consultations[c.ID] = &copied
	return nil
}

func (r consultationRepo) Get(_ context.Context, id uuid.UUID) (*model.Consultation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.consultations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r consultationRepo) GetDetail(_ context.Context, id uuid.UUID) (*model.ConsultationDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.consultations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(c), nil
}

// detail must be called with the lock held.
func (r consultationRepo) detail(c *model.Consultation) *model.ConsultationDetail {
	d := &model.ConsultationDetail{Consultation: *c}
	if p, ok := r.s.users[c.PatientID]; ok {
		d.PatientName = p.Name
	}
	if p, ok := r.s.users[c.ProfessionalID]; ok {
		d.ProfessionalName = p.Name
		d.ProfessionalSpecialty = p.Specialty()
	}
	return d
}

// update applies fn to the consultation when it is bound to professionalID
// and cond holds.
func (r consultationRepo) update(id, professionalID uuid.UUID, cond func(*model.Consultation) bool, fn func(*model.Consultation)) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.consultations[id]
	if !ok || c.ProfessionalID != professionalID || !cond(c) {
		return false
	}
	fn(c)
	c.UpdatedAt = time.Now().UTC()
	return true
}

func (r consultationRepo) Transition(_ context.Context, id, professionalID uuid.UUID, from []model.ConsultationStatus, to model.ConsultationStatus) (bool, error) {
	return r.update(id, professionalID, func(c *model.Consultation) bool {
		for _, s := range from {
			if c.Status == s {
				return true
			}
		}
		return false
	}, func(c *model.Consultation) {
		c.Status = to
	}), nil
}

func (r consultationRepo) SaveNotes(_ context.Context, id, professionalID uuid.UUID, notes string) (bool, error) {
	return r.update(id, professionalID, func(c *model.Consultation) bool {
		return c.Status == model.StatusActive
	}, func(c *model.Consultation) {
		c.Notes = &notes
	}), nil
}

func (r consultationRepo) SaveDiagnosis(_ context.Context, id, professionalID uuid.UUID, diagnosis *model.Diagnosis) (bool, error) {
	d := *diagnosis
	return r.update(id, professionalID, func(c *model.Consultation) bool {
		return c.Status == model.StatusActive || c.Status == model.StatusCompleted
	}, func(c *model.Consultation) {
		c.Diagnosis = &d
		summary := d.DiagnosisSummary
		c.PostConsultationSummary = &summary
	}), nil
}

func (r consultationRepo) SavePrescription(_ context.Context, id, professionalID uuid.UUID, prescription *model.Prescription) (bool, error) {
	p := *prescription
	return r.update(id, professionalID, func(c *model.Consultation) bool {
		return c.Diagnosis != nil
	}, func(c *model.Consultation) {
		c.Prescription = &p
	}), nil
}

// ListWaiting returns entries in booking order only; urgency ordering is
// left to the caller.
func (r consultationRepo) ListWaiting(_ context.Context, professionalID uuid.UUID) ([]*model.QueueEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.QueueEntry{}
	for _, c := range r.s.consultations {
		if c.ProfessionalID != professionalID || c.Status != model.StatusWaiting {
			continue
		}
		entry := &model.QueueEntry{
			ID:              c.ID,
			PatientID:       c.PatientID,
			SymptomsSummary: c.SymptomsSummary,
			Triage:          c.Triage,
			CreatedAt:       c.CreatedAt,
		}
		if p, ok := r.s.users[c.PatientID]; ok {
			entry.PatientName = p.Name
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r consultationRepo) ListCompleted(_ context.Context, userID uuid.UUID, role model.Role) ([]*model.ConsultationDetail, error) {
	return r.list(func(c *model.Consultation) bool {
		if c.Status != model.StatusCompleted {
			return false
		}
		if role == model.RoleProfessional {
			return c.ProfessionalID == userID
		}
		return c.PatientID == userID
	}), nil
}

func (r consultationRepo) ListWithPrescription(_ context.Context, patientID uuid.UUID) ([]*model.ConsultationDetail, error) {
	return r.list(func(c *model.Consultation) bool {
		return c.PatientID == patientID && c.Prescription != nil
	}), nil
}

// list returns matches newest first by last update.
func (r consultationRepo) list(match func(*model.Consultation) bool) []*model.ConsultationDetail {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.ConsultationDetail{}
	for _, c := range r.s.consultations {
		if match(c) {
			out = append(out, r.detail(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}
