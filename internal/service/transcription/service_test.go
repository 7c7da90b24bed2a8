package transcription

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nkosi-ncube/CareIQ/internal/llm/llmtest"
	"github.com/nkosi-ncube/CareIQ/internal/model"
	apperrors "github.com/nkosi-ncube/CareIQ/pkg/errors"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
)

type mockTranscoder struct {
	mock.Mock
}

func (m *mockTranscoder) ToMP3(ctx context.Context, audio []byte) ([]byte, error) {
	args := m.Called(ctx, audio)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

var session = &model.Session{ID: uuid.New(), Role: model.RoleProfessional}

func TestTranscribe(t *testing.T) {
	ctx := context.Background()
	webm := []byte("webm-bytes")
	mp3 := []byte("mp3-bytes")

	t.Run("non-mp3 audio is converted first", func(t *testing.T) {
		tc := &mockTranscoder{}
		tc.On("ToMP3", mock.Anything, webm).Return(mp3, nil).Once()
		stt := &llmtest.Transcriber{}
		stt.On("Transcribe", mock.Anything, mp3).Return("  patient reports dizziness \n", nil).Once()

		svc := NewService(tc, stt, logger.Nop())
		text, err := svc.Transcribe(ctx, session, webm, "audio/webm;codecs=opus")
		require.NoError(t, err)
		assert.Equal(t, "patient reports dizziness", text)
		tc.AssertExpectations(t)
		stt.AssertExpectations(t)
	})

	t.Run("mp3 is passed through", func(t *testing.T) {
		tc := &mockTranscoder{}
		stt := &llmtest.Transcriber{}

		svc := NewService(tc, stt, logger.Nop())
		for _, mime := range []string{"audio/mpeg", "Audio/MP3"} {
			stt.On("Transcribe", mock.Anything, mp3).Return("hello", nil).Once()
			_, err := svc.Transcribe(ctx, session, mp3, mime)
			require.NoError(t, err)
		}
		tc.AssertNotCalled(t, "ToMP3", mock.Anything, mock.Anything)
	})

	t.Run("transcode failure skips speech-to-text", func(t *testing.T) {
		tc := &mockTranscoder{}
		tc.On("ToMP3", mock.Anything, webm).Return(nil, errors.New("ffmpeg: exit status 1"))
		stt := &llmtest.Transcriber{}

		svc := NewService(tc, stt, logger.Nop())
		_, err := svc.Transcribe(ctx, session, webm, "audio/webm")
		assert.True(t, apperrors.Is(err, apperrors.ErrTranscodeFailure))
		stt.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
	})

	t.Run("speech-to-text failure", func(t *testing.T) {
		stt := &llmtest.Transcriber{}
		stt.On("Transcribe", mock.Anything, mp3).Return("", errors.New("502 from provider"))

		svc := NewService(&mockTranscoder{}, stt, logger.Nop())
		_, err := svc.Transcribe(ctx, session, mp3, "audio/mpeg")
		assert.True(t, apperrors.Is(err, apperrors.ErrServiceFailure))
	})

	t.Run("rejected input makes no calls", func(t *testing.T) {
		tc := &mockTranscoder{}
		stt := &llmtest.Transcriber{}
		svc := NewService(tc, stt, logger.Nop())

		_, err := svc.Transcribe(ctx, session, nil, "audio/webm")
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

		_, err = svc.Transcribe(ctx, session, webm, "video/mp4")
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

		_, err = svc.Transcribe(ctx, nil, webm, "audio/webm")
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

		tc.AssertNotCalled(t, "ToMP3", mock.Anything, mock.Anything)
		stt.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
	})
}

func TestTranscribeDataURI(t *testing.T) {
	ctx := context.Background()
	ogg := []byte("ogg-bytes")

	tc := &mockTranscoder{}
	tc.On("ToMP3", mock.Anything, ogg).Return([]byte("mp3"), nil)
	stt := &llmtest.Transcriber{}
	stt.On("Transcribe", mock.Anything, []byte("mp3")).Return("take two tablets", nil)
	svc := NewService(tc, stt, logger.Nop())

	uri := "data:audio/ogg;base64," + base64.StdEncoding.EncodeToString(ogg)
	text, err := svc.TranscribeDataURI(ctx, session, uri)
	require.NoError(t, err)
	assert.Equal(t, "take two tablets", text)

	t.Run("malformed uri", func(t *testing.T) {
		tc := &mockTranscoder{}
		stt := &llmtest.Transcriber{}
		svc := NewService(tc, stt, logger.Nop())

		for _, bad := range []string{"", "audio/ogg;base64,AAAA", "data:audio/ogg;base64,%%%"} {
			_, err := svc.TranscribeDataURI(ctx, session, bad)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput), bad)
		}
		tc.AssertNotCalled(t, "ToMP3", mock.Anything, mock.Anything)
		stt.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
	})
}
