package medical

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/medical"
)

type Handler struct {
	svc *medical.Service
}

func NewHandler(svc *medical.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/diagnoses/generate", h.GenerateDiagnosis)
	r.POST("/prescriptions/generate", h.GeneratePrescription)
	r.PUT("/consultations/:id/diagnosis", h.SaveDiagnosis)
	r.PUT("/consultations/:id/prescription", h.ApprovePrescription)
}

func (h *Handler) GenerateDiagnosis(c *gin.Context) {
	var req medical.DiagnosisInput
	if !handler.Bind(c, &req) {
		return
	}

	diagnosis, err := h.svc.GenerateDiagnosis(c.Request.Context(), handler.Session(c), req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(diagnosis))
}

func (h *Handler) SaveDiagnosis(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}
	var req model.Diagnosis
	if !handler.Bind(c, &req) {
		return
	}

	if err := h.svc.SaveDiagnosis(c.Request.Context(), handler.Session(c), id, &req); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(req))
}

func (h *Handler) GeneratePrescription(c *gin.Context) {
	var req model.PrescriptionContext
	if !handler.Bind(c, &req) {
		return
	}

	prescription, err := h.svc.GeneratePrescription(c.Request.Context(), handler.Session(c), req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescription))
}

func (h *Handler) ApprovePrescription(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}
	var req model.Prescription
	if !handler.Bind(c, &req) {
		return
	}

	if err := h.svc.ApprovePrescription(c.Request.Context(), handler.Session(c), id, &req); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(req))
}
