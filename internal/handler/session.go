package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nkosi-ncube/CareIQ/internal/model"
)

const contextSession = "session"

func SetSession(c *gin.Context, s *model.Session) {
	c.Set(contextSession, s)
}

// Session returns the authenticated caller, or nil on public routes.
func Session(c *gin.Context) *model.Session {
	if v, ok := c.Get(contextSession); ok {
		if s, ok := v.(*model.Session); ok {
			return s
		}
	}
	return nil
}

// ParamID parses the :id path parameter, writing a 400 on failure.
func ParamID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// Bind decodes the JSON body into req, writing a 400 on failure.
func Bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return false
	}
	return true
}
