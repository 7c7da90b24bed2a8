package triage

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/triage"
)

type Handler struct {
	svc *triage.Service
}

func NewHandler(svc *triage.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/triage")
	{
		g.POST("/questions", h.Questions)
		g.POST("/analyze", h.Analyze)
		g.POST("/vitals", h.Vitals)
	}
}

type questionsRequest struct {
	Symptoms string `json:"symptomsDescription"`
}

// Questions never fails on a generation error; the client gets an empty list
// and moves straight to analysis.
func (h *Handler) Questions(c *gin.Context) {
	var req questionsRequest
	if !handler.Bind(c, &req) {
		return
	}

	questions, err := h.svc.FollowUpQuestionsOrNone(c.Request.Context(), handler.Session(c), req.Symptoms)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"questions": questions}))
}

func (h *Handler) Analyze(c *gin.Context) {
	var req triage.AnalyzeInput
	if !handler.Bind(c, &req) {
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), handler.Session(c), req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Vitals(c *gin.Context) {
	var req model.Vitals
	if !handler.Bind(c, &req) {
		return
	}

	analysis, err := h.svc.AnalyzeVitals(c.Request.Context(), handler.Session(c), req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(analysis))
}
