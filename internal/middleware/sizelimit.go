package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/pkg/httputil"
)

// SizeLimitConfig bounds request bodies. Uploads carry audio or photo data
// URIs and get the larger limit.
type SizeLimitConfig struct {
	MaxBodySize   int64
	MaxUploadSize int64
	UploadPaths   []string
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20,
		MaxUploadSize: 25 << 20,
		UploadPaths:   []string{"/transcriptions", "/triage/analyze"},
	}
}

func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := config.MaxBodySize
		for _, suffix := range config.UploadPaths {
			if strings.HasSuffix(c.Request.URL.Path, suffix) {
				limit = config.MaxUploadSize
				break
			}
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.Response{
				Status:  "error",
				Message: fmt.Sprintf("request body exceeds %d bytes", limit),
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
