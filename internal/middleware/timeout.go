package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/pkg/httputil"
)

// TimeoutConfig represents timeout middleware configuration
type TimeoutConfig struct {
	Duration time.Duration
}

// DefaultTimeoutConfig leaves room for a generative call plus a transcode.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Duration: 60 * time.Second,
	}
}

// Timeout puts a deadline on the request context. Downstream calls observe
// it; if the handler returns without writing after the deadline, the client
// gets a 504.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Duration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, httputil.Response{
				Status:  "error",
				Message: "request timeout",
			})
		}
	}
}
