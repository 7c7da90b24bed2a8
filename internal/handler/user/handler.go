package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/user"
)

type Handler struct {
	service *user.Service
}

func NewHandler(service *user.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	profile := r.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, err := h.service.GetProfile(c.Request.Context(), handler.Session(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateProfileRequest
	if !handler.Bind(c, &req) {
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), handler.Session(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(u))
}
