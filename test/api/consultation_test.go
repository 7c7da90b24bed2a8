//go:build integration

package api_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func book(t *testing.T, urgency string) string {
	t.Helper()
	resp := makeRequest(patient, http.MethodPost, "/consultations", map[string]interface{}{
		"professionalId":  hcpID,
		"symptomsSummary": "Persistent headache for three days",
		"aiAnalysis": map[string]interface{}{
			"suggestedProfessionals": []string{"General Practice"},
			"confidenceLevel":        0.7,
			"urgencyLevel":           urgency,
			"recommendedAction":      "See a GP",
		},
	})
	require.True(t, resp.IsSuccess(), resp.Message)
	assert.Equal(t, "waiting", resp.Data["status"])
	return resp.GetString("id")
}

func TestConsultationLifecycle(t *testing.T) {
	id := book(t, "Medium")

	// The patient cannot start their own consultation.
	resp := makeRequest(patient, http.MethodPost, fmt.Sprintf("/consultations/%s/start", id), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Diagnosis before the session starts is rejected.
	resp = makeRequest(professional, http.MethodPut, fmt.Sprintf("/consultations/%s/diagnosis", id), map[string]interface{}{
		"diagnosisSummary":     "Tension headache",
		"potentialConditions":  []string{"Tension headache"},
		"recommendedNextSteps": "Rest and hydrate",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = makeRequest(professional, http.MethodPost, fmt.Sprintf("/consultations/%s/start", id), nil)
	require.True(t, resp.IsSuccess(), resp.Message)
	assert.Equal(t, "active", resp.Data["status"])

	resp = makeRequest(professional, http.MethodPost, fmt.Sprintf("/consultations/%s/start", id), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Prescription before diagnosis is rejected.
	prescription := map[string]interface{}{
		"medications": []map[string]string{
			{"name": "Paracetamol", "dosage": "500mg", "frequency": "Every 6 hours", "reason": "Pain"},
		},
		"notes":           "Take with food",
		"confidenceLevel": 0.8,
	}
	resp = makeRequest(professional, http.MethodPut, fmt.Sprintf("/consultations/%s/prescription", id), prescription)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = makeRequest(professional, http.MethodPut, fmt.Sprintf("/consultations/%s/diagnosis", id), map[string]interface{}{
		"diagnosisSummary":     "Tension headache",
		"potentialConditions":  []string{"Tension headache"},
		"recommendedNextSteps": "Rest and hydrate",
	})
	require.True(t, resp.IsSuccess(), resp.Message)

	resp = makeRequest(professional, http.MethodPut, fmt.Sprintf("/consultations/%s/prescription", id), prescription)
	require.True(t, resp.IsSuccess(), resp.Message)

	resp = makeRequest(professional, http.MethodPost, fmt.Sprintf("/consultations/%s/complete", id), nil)
	require.True(t, resp.IsSuccess(), resp.Message)
	assert.Equal(t, "completed", resp.Data["status"])

	resp = makeRequest(professional, http.MethodPost, fmt.Sprintf("/consultations/%s/cancel", id), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = makeRequest(patient, http.MethodGet, fmt.Sprintf("/consultations/%s", id), nil)
	require.True(t, resp.IsSuccess(), resp.Message)
	assert.Equal(t, "Tension headache", resp.Data["postConsultationSummary"])

	resp = makeRequest(patient, http.MethodGet, "/prescriptions", nil)
	require.True(t, resp.IsSuccess(), resp.Message)
	assert.NotEmpty(t, resp.List)
}

func TestConcurrentStart(t *testing.T) {
	id := book(t, "Low")

	const workers = 5
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = makeRequest(professional, http.MethodPost, fmt.Sprintf("/consultations/%s/start", id), nil).StatusCode
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestQueueOrdering(t *testing.T) {
	low := book(t, "Low")
	high := book(t, "High")

	resp := makeRequest(professional, http.MethodGet, "/consultations/queue", nil)
	require.True(t, resp.IsSuccess(), resp.Message)

	pos := map[string]int{}
	for i, entry := range resp.List {
		pos[entry["id"].(string)] = i
	}
	require.Contains(t, pos, low)
	require.Contains(t, pos, high)
	assert.Less(t, pos[high], pos[low])
}
