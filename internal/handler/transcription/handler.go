package transcription

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nkosi-ncube/CareIQ/internal/handler"
	"github.com/nkosi-ncube/CareIQ/internal/service/transcription"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
)

const formField = "audio"

type Handler struct {
	svc *transcription.Service
}

func NewHandler(svc *transcription.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/transcriptions", h.Transcribe)
}

type dataURIRequest struct {
	Audio string `json:"audioDataUri" binding:"required"`
}

// Transcribe accepts either a multipart upload in the "audio" field or a JSON
// body carrying a data URI.
func (h *Handler) Transcribe(c *gin.Context) {
	var (
		text string
		err  error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		text, err = h.fromUpload(c)
	} else {
		var req dataURIRequest
		if !handler.Bind(c, &req) {
			return
		}
		text, err = h.svc.TranscribeDataURI(c.Request.Context(), handler.Session(c), req.Audio)
	}
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"transcription": text}))
}

func (h *Handler) fromUpload(c *gin.Context) (string, error) {
	header, err := c.FormFile(formField)
	if err != nil {
		return "", apperrors.InvalidInput("audio file is required", err)
	}
	f, err := header.Open()
	if err != nil {
		return "", apperrors.InvalidInput("unreadable audio upload", err)
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return "", apperrors.InvalidInput("unreadable audio upload", err)
	}
	return h.svc.Transcribe(c.Request.Context(), handler.Session(c), audio, header.Header.Get("Content-Type"))
}
