package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Transcoder converts arbitrary audio into MP3.
type Transcoder interface {
	ToMP3(ctx context.Context, audio []byte) ([]byte, error)
}

// FFmpeg shells out to an ffmpeg binary, streaming through stdin and stdout.
type FFmpeg struct {
	Binary string
}

func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary}
}

func (f *FFmpeg) ToMP3(ctx context.Context, audio []byte) ([]byte, error) {
	if len(audio) == 0 {
		return nil, errors.New("no audio to convert")
	}

	cmd := exec.CommandContext(ctx, f.Binary,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-vn", "-f", "mp3",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(audio)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg produced no output")
	}
	return stdout.Bytes(), nil
}
