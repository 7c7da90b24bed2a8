package summary

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/summary"
)

type Handler struct {
	svc *summary.Service
}

func NewHandler(svc *summary.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/history/summary", h.HistorySummary)
	r.POST("/translations", h.Translate)
}

func (h *Handler) HistorySummary(c *gin.Context) {
	text, err := h.svc.SummarizeMyHistory(c.Request.Context(), handler.Session(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"summary": text}))
}

func (h *Handler) Translate(c *gin.Context) {
	var req model.TranslateRequest
	if !handler.Bind(c, &req) {
		return
	}

	translated, err := h.svc.Translate(c.Request.Context(), handler.Session(c), req.Bundle, req.TargetLanguage)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(translated))
}
