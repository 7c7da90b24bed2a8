package model

// TranslationBundle is the post-consultation summary sent for translation.
// Nil fields are absent from the bundle and stay absent after translation.
type TranslationBundle struct {
	SymptomsSummary      *string      `json:"symptomsSummary,omitempty"`
	DiagnosisSummary     *string      `json:"diagnosisSummary,omitempty"`
	PotentialConditions  []string     `json:"potentialConditions,omitempty"`
	RecommendedNextSteps *string      `json:"recommendedNextSteps,omitempty"`
	PrescriptionNotes    *string      `json:"prescriptionNotes,omitempty"`
	Medications          []Medication `json:"medications,omitempty"`
}

type TranslateRequest struct {
	Bundle         TranslationBundle `json:"bundle"`
	TargetLanguage string            `json:"targetLanguage" binding:"required"`
}
