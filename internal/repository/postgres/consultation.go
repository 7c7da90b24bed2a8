package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nkosi-ncube/CareIQ/internal/model"
)

const detailSelect = `
	SELECT
		c.id, c.patient_id, c.professional_id, c.status, c.symptoms_summary,
		c.triage, c.notes, c.diagnosis, c.prescription, c.post_consultation_summary,
		c.created_at, c.updated_at,
		p.name AS patient_name,
		h.name AS professional_name,
		COALESCE(h.professional_profile->>'specialty', '') AS professional_specialty
	FROM consultations c
	JOIN users p ON p.id = c.patient_id
	JOIN users h ON h.id = c.professional_id
`

// urgencyOrder ranks High before Medium before Low.
const urgencyOrder = `
	CASE c.triage->>'urgencyLevel'
		WHEN 'High' THEN 0
		WHEN 'Medium' THEN 1
		WHEN 'Low' THEN 2
		ELSE 3
	END
`

func statusNames(statuses []model.ConsultationStatus) []string {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return names
}

func (r *consultationRepository) Create(ctx context.Context, c *model.Consultation) error {
	query := `
		INSERT INTO consultations (
			id, patient_id, professional_id, status, symptoms_summary,
			triage, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.PatientID,
		c.ProfessionalID,
		c.Status,
		c.SymptomsSummary,
		c.Triage,
		c.CreatedAt,
		c.UpdatedAt,
	)
	r.observe("create consultation", start, err)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	query := `
		SELECT id, patient_id, professional_id, status, symptoms_summary, triage,
			notes, diagnosis, prescription, post_consultation_summary, created_at, updated_at
		FROM consultations
		WHERE id = $1
	`

	var c model.Consultation
	if err := r.get(ctx, "get consultation", &c, query, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *consultationRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.ConsultationDetail, error) {
	var d model.ConsultationDetail
	if err := r.get(ctx, "get consultation detail", &d, detailSelect+` WHERE c.id = $1`, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *consultationRepository) Transition(ctx context.Context, id, professionalID uuid.UUID, from []model.ConsultationStatus, to model.ConsultationStatus) (bool, error) {
	query := `
		UPDATE consultations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND professional_id = $3 AND status = ANY($4)
	`
	return r.execConditional(ctx, "transition consultation", query,
		to, id, professionalID, pq.Array(statusNames(from)))
}

func (r *consultationRepository) SaveNotes(ctx context.Context, id, professionalID uuid.UUID, notes string) (bool, error) {
	query := `
		UPDATE consultations
		SET notes = $1, updated_at = NOW()
		WHERE id = $2 AND professional_id = $3 AND status = 'active'
	`
	return r.execConditional(ctx, "save consultation notes", query, notes, id, professionalID)
}

func (r *consultationRepository) SaveDiagnosis(ctx context.Context, id, professionalID uuid.UUID, diagnosis *model.Diagnosis) (bool, error) {
	query := `
		UPDATE consultations
		SET diagnosis = $1, post_consultation_summary = $2, updated_at = NOW()
		WHERE id = $3 AND professional_id = $4 AND status IN ('active', 'completed')
	`
	return r.execConditional(ctx, "save diagnosis", query,
		diagnosis, diagnosis.DiagnosisSummary, id, professionalID)
}

func (r *consultationRepository) SavePrescription(ctx context.Context, id, professionalID uuid.UUID, prescription *model.Prescription) (bool, error) {
	query := `
		UPDATE consultations
		SET prescription = $1, updated_at = NOW()
		WHERE id = $2 AND professional_id = $3 AND diagnosis IS NOT NULL
	`
	return r.execConditional(ctx, "save prescription", query, prescription, id, professionalID)
}

func (r *consultationRepository) ListWaiting(ctx context.Context, professionalID uuid.UUID) ([]*model.QueueEntry, error) {
	query := `
		SELECT c.id, c.patient_id, p.name AS patient_name, c.symptoms_summary, c.triage, c.created_at
		FROM consultations c
		JOIN users p ON p.id = c.patient_id
		WHERE c.professional_id = $1 AND c.status = 'waiting'
		ORDER BY ` + urgencyOrder + `, c.created_at ASC
	`

	var entries []*model.QueueEntry
	if err := r.list(ctx, "list waiting consultations", &entries, query, professionalID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *consultationRepository) ListCompleted(ctx context.Context, userID uuid.UUID, role model.Role) ([]*model.ConsultationDetail, error) {
	column := "c.patient_id"
	if role == model.RoleProfessional {
		column = "c.professional_id"
	}
	query := detailSelect + ` WHERE ` + column + ` = $1 AND c.status = 'completed' ORDER BY c.updated_at DESC`

	var details []*model.ConsultationDetail
	if err := r.list(ctx, "list completed consultations", &details, query, userID); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *consultationRepository) ListWithPrescription(ctx context.Context, patientID uuid.UUID) ([]*model.ConsultationDetail, error) {
	query := detailSelect + ` WHERE c.patient_id = $1 AND c.prescription IS NOT NULL ORDER BY c.updated_at DESC`

	var details []*model.ConsultationDetail
	if err := r.list(ctx, "list prescriptions", &details, query, patientID); err != nil {
		return nil, err
	}
	return details, nil
}
