package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/httputil"
)

// ErrorHandler renders errors attached with c.Error when no response has
// been written yet.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		status := http.StatusInternalServerError
		if err, ok := lastErr.(interface{ StatusCode() int }); ok {
			status = err.StatusCode()
		}

		message := "internal server error"
		code := int(errors.ErrInternal)
		var appErr *errors.AppError
		if stderrors.As(lastErr, &appErr) {
			message = appErr.Message
			code = int(appErr.Code)
		}

		c.JSON(status, httputil.Response{
			Status:  "error",
			Message: message,
			Code:    code,
		})
	}
}
