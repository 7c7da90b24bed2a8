package consultation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkosi-ncube/CareIQ/internal/cache"
	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/repository/memory"
	consultationsvc "github.com/nkosi-ncube/CareIQ/internal/service/consultation"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
)

type silentNotifier struct{}

func (silentNotifier) ConsultationChanged(context.Context, *model.Consultation) {}

type testServer struct {
	engine   *gin.Engine
	sessions map[string]*model.Session
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.New()
	ctx := context.Background()

	patient := &model.User{
		Base: model.Base{ID: uuid.New()}, Name: "Thandi Mokoena", Email: "thandi@example.com",
		Role: model.RolePatient, Patient: &model.PatientProfile{PaymentMethod: model.PaymentCash},
	}
	professional := &model.User{
		Base: model.Base{ID: uuid.New()}, Name: "Dr Sipho Dlamini", Email: "sipho@example.com",
		Role: model.RoleProfessional,
		Professional: &model.ProfessionalProfile{
			PracticeNumber: "PR-1001", Specialty: model.SpecialtyGeneralPractice,
		},
	}
	require.NoError(t, store.Users().Create(ctx, patient))
	require.NoError(t, store.Users().Create(ctx, professional))

	views := cache.NewViews(time.Minute, time.Minute, nil, logger.Nop(), nil)
	svc := consultationsvc.NewService(store.Consultations(), store.Users(), views, silentNotifier{}, nil, logger.Nop())

	ts := &testServer{
		engine: gin.New(),
		sessions: map[string]*model.Session{
			"patient": {ID: patient.ID, Role: model.RolePatient, Name: patient.Name},
			"hcp":     {ID: professional.ID, Role: model.RoleProfessional, Name: professional.Name},
		},
	}
	api := ts.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if s, ok := ts.sessions[c.GetHeader("X-Test-User")]; ok {
			handler.SetSession(c, s)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return ts
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) do(t *testing.T, user, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (ts *testServer) book(t *testing.T, urgency model.Urgency) uuid.UUID {
	t.Helper()
	status, env := ts.do(t, "patient", http.MethodPost, "/consultations", map[string]interface{}{
		"professionalId":  ts.sessions["hcp"].ID,
		"symptomsSummary": "Fever and sore throat",
		"aiAnalysis": map[string]interface{}{
			"suggestedProfessionals": []string{"General Practice"},
			"confidenceLevel":        0.7,
			"urgencyLevel":           urgency,
			"recommendedAction":      "See a GP today",
		},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var c model.Consultation
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, model.StatusWaiting, c.Status)
	return c.ID
}

func TestConsultationRoutes(t *testing.T) {
	ts := newTestServer(t)
	id := ts.book(t, model.UrgencyMedium)
	path := "/consultations/" + id.String()

	status, _ := ts.do(t, "patient", http.MethodPost, path+"/start", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, "hcp", http.MethodPost, path+"/start", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := ts.do(t, "hcp", http.MethodPost, path+"/start", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "error", env.Status)

	status, _ = ts.do(t, "hcp", http.MethodPut, path+"/notes", map[string]string{"consultationNotes": "Tonsils inflamed"})
	assert.Equal(t, http.StatusOK, status)

	status, env = ts.do(t, "patient", http.MethodGet, path+"/waiting-room", nil)
	require.Equal(t, http.StatusOK, status)
	var wr model.WaitingRoom
	require.NoError(t, json.Unmarshal(env.Data, &wr))
	assert.Equal(t, model.StatusActive, wr.Status)
	assert.Equal(t, "Dr Sipho Dlamini", wr.ProfessionalName)

	status, _ = ts.do(t, "hcp", http.MethodPost, path+"/complete", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = ts.do(t, "patient", http.MethodGet, "/consultations/history", nil)
	require.Equal(t, http.StatusOK, status)
	var history []model.ConsultationDetail
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Notes)
	assert.Equal(t, "Tonsils inflamed", *history[0].Notes)
}

func TestQueueRoute(t *testing.T) {
	ts := newTestServer(t)
	low := ts.book(t, model.UrgencyLow)
	high := ts.book(t, model.UrgencyHigh)

	status, env := ts.do(t, "hcp", http.MethodGet, "/consultations/queue", nil)
	require.Equal(t, http.StatusOK, status)
	var queue []model.QueueEntry
	require.NoError(t, json.Unmarshal(env.Data, &queue))
	require.Len(t, queue, 2)
	assert.Equal(t, high, queue[0].ID)
	assert.Equal(t, low, queue[1].ID)

	status, _ = ts.do(t, "patient", http.MethodGet, "/consultations/queue", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.do(t, "", http.MethodGet, "/consultations/queue", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)

	status, _ := ts.do(t, "hcp", http.MethodPost, "/consultations/not-a-uuid/start", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, "patient", http.MethodPost, "/consultations", map[string]string{"symptomsSummary": "x"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.do(t, "hcp", http.MethodGet, "/consultations/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
}
