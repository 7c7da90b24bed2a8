package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/patient"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	alerts := r.Group("/alerts")
	{
		alerts.GET("", h.ListAlerts)
		alerts.POST("/seed", h.SeedAlerts)
		alerts.PUT("/:id/read", h.MarkAlertRead)
	}

	tests := r.Group("/diagnostic-tests")
	{
		tests.GET("", h.ListTests)
		tests.POST("", h.CreateTest)
		tests.PUT("/:id", h.UpdateTest)
		tests.DELETE("/:id", h.DeleteTest)
	}
}

func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.service.ListAlerts(c.Request.Context(), handler.Session(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) SeedAlerts(c *gin.Context) {
	alerts, err := h.service.SeedAlerts(c.Request.Context(), handler.Session(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(alerts))
}

func (h *Handler) MarkAlertRead(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.MarkAlertRead(c.Request.Context(), handler.Session(c), id); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("alert marked as read"))
}

func (h *Handler) ListTests(c *gin.Context) {
	tests, err := h.service.ListTests(c.Request.Context(), handler.Session(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tests))
}

func (h *Handler) CreateTest(c *gin.Context) {
	var req model.DiagnosticTestRequest
	if !handler.Bind(c, &req) {
		return
	}

	test, err := h.service.CreateTest(c.Request.Context(), handler.Session(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(test))
}

func (h *Handler) UpdateTest(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}
	var req model.DiagnosticTestRequest
	if !handler.Bind(c, &req) {
		return
	}

	test, err := h.service.UpdateTest(c.Request.Context(), handler.Session(c), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(test))
}

func (h *Handler) DeleteTest(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTest(c.Request.Context(), handler.Session(c), id); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("diagnostic test deleted"))
}
