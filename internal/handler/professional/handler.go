package professional

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/service/matcher"
)

type Handler struct {
	svc *matcher.Service
}

func NewHandler(svc *matcher.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/professionals/match", h.Match)
}

type matchRequest struct {
	Specialties []string `json:"specialties"`
}

func (h *Handler) Match(c *gin.Context) {
	var req matchRequest
	if !handler.Bind(c, &req) {
		return
	}

	result, err := h.svc.Match(c.Request.Context(), handler.Session(c), req.Specialties)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
