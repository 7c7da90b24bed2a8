package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nkosi-ncube/CareIQ/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Code    int         `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Status: "success",
		Data:   data,
	})
}

// RespondWithError maps AppErrors onto their status; anything else is a 500.
func RespondWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	message := "internal server error"
	code := int(errors.ErrInternal)

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
		message = appErr.Message
		code = int(appErr.Code)
	}

	if statusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

// RespondWithMessage sends an error response with a plain message.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Status:  "error",
		Message: message,
	})
}
