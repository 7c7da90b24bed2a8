package transcription

import (
	"context"
	"strings"

	"github.com/nkosi-ncube/CareIQ/internal/llm"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/internal/service/auth"
	"github.com/nkosi-ncube/CareIQ/internal/transcode"
	"github.com/nkosi-ncube/CareIQ/pkg/datauri"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
)

// passthrough MIME types go to speech-to-text without transcoding.
var passthrough = map[string]bool{
	"audio/mpeg": true,
	"audio/mp3":  true,
}

type Service struct {
	transcoder transcode.Transcoder
	stt        llm.Transcriber
	logger     *logger.Logger
}

func NewService(transcoder transcode.Transcoder, stt llm.Transcriber, log *logger.Logger) *Service {
	return &Service{
		transcoder: transcoder,
		stt:        stt,
		logger:     log,
	}
}

// TranscribeDataURI accepts audio encoded as data:<mime>;base64,<payload>.
func (s *Service) TranscribeDataURI(ctx context.Context, session *model.Session, uri string) (string, error) {
	if err := auth.RequireSession(session); err != nil {
		return "", err
	}
	audio, err := datauri.Parse(uri)
	if err != nil {
		return "", apperrors.InvalidInput("audio must be a base64 data URI", err)
	}
	return s.transcribe(ctx, audio.Data, audio.MIMEType)
}

// Transcribe converts non-MP3 audio to MP3 first, then calls speech-to-text once.
func (s *Service) Transcribe(ctx context.Context, session *model.Session, audio []byte, mimeType string) (string, error) {
	if err := auth.RequireSession(session); err != nil {
		return "", err
	}
	return s.transcribe(ctx, audio, normalizeMIME(mimeType))
}

func (s *Service) transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", apperrors.InvalidInput("audio is empty", nil)
	}
	if !strings.HasPrefix(mimeType, "audio/") {
		return "", apperrors.InvalidInput("unsupported media type "+mimeType, nil)
	}

	if !passthrough[mimeType] {
		converted, err := s.transcoder.ToMP3(ctx, audio)
		if err != nil {
			return "", apperrors.TranscodeFailure(err)
		}
		s.logger.Debug("converted audio to mp3", "from", mimeType, "bytes", len(converted))
		audio = converted
	}

	text, err := s.stt.Transcribe(ctx, audio)
	if err != nil {
		return "", apperrors.ServiceFailure("transcription", err)
	}
	return strings.TrimSpace(text), nil
}

func normalizeMIME(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
