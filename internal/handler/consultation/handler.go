package consultation

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/consultation"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

type Handler struct {
	svc *consultation.Service
}

func NewHandler(svc *consultation.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations")
	{
		consultations.POST("", h.Book)
		consultations.GET("/queue", h.Queue)
		consultations.GET("/history", h.History)
		consultations.GET("/:id", h.Get)
		consultations.GET("/:id/waiting-room", h.WaitingRoom)
		consultations.POST("/:id/start", h.transition(h.svc.Start))
		consultations.POST("/:id/complete", h.transition(h.svc.Complete))
		consultations.POST("/:id/cancel", h.transition(h.svc.Cancel))
		consultations.PUT("/:id/notes", h.SaveNotes)
	}
	r.GET("/prescriptions", h.Prescriptions)
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookRequest
	if !handler.Bind(c, &req) {
		return
	}

	created, err := h.svc.Book(c.Request.Context(), handler.Session(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Queue(c *gin.Context) {
	session := handler.Session(c)
	if session == nil {
		handler.Fail(c, apperrors.Unauthorized("sign in required"))
		return
	}

	entries, err := h.svc.ListWaitingFor(c.Request.Context(), session, session.ID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) History(c *gin.Context) {
	list, err := h.svc.History(c.Request.Context(), handler.Session(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), handler.Session(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) WaitingRoom(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}

	wr, err := h.svc.WaitingRoom(c.Request.Context(), handler.Session(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(wr))
}

type transitionFunc func(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Consultation, error)

func (h *Handler) transition(fn transitionFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := handler.ParamID(c)
		if !ok {
			return
		}

		updated, err := fn(c.Request.Context(), handler.Session(c), id)
		if err != nil {
			handler.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
	}
}

type notesRequest struct {
	Notes string `json:"consultationNotes"`
}

func (h *Handler) SaveNotes(c *gin.Context) {
	id, ok := handler.ParamID(c)
	if !ok {
		return
	}
	var req notesRequest
	if !handler.Bind(c, &req) {
		return
	}

	if err := h.svc.SaveNotes(c.Request.Context(), handler.Session(c), id, req.Notes); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("notes saved"))
}

func (h *Handler) Prescriptions(c *gin.Context) {
	list, err := h.svc.Prescriptions(c.Request.Context(), handler.Session(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}
