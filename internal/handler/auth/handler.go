package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	svc    *auth.Service
	cookie CookieConfig
}

func NewHandler(svc *auth.Service, cookie CookieConfig) *Handler {
	return &Handler{svc: svc, cookie: cookie}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.Bind(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.Bind(c, &req) {
		return
	}

	result, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, result.Token, maxAge, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}
