package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wav returns a short mono 16-bit PCM sine tone.
func wav(t *testing.T) []byte {
	t.Helper()
	const rate, samples = 8000, 4000
	var pcm bytes.Buffer
	for i := 0; i < samples; i++ {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/rate) * 8000)
		require.NoError(t, binary.Write(&pcm, binary.LittleEndian, v))
	}

	var b bytes.Buffer
	b.WriteString("RIFF")
	require.NoError(t, binary.Write(&b, binary.LittleEndian, uint32(36+pcm.Len())))
	b.WriteString("WAVEfmt ")
	for _, v := range []interface{}{uint32(16), uint16(1), uint16(1), uint32(rate), uint32(rate * 2), uint16(2), uint16(16)} {
		require.NoError(t, binary.Write(&b, binary.LittleEndian, v))
	}
	b.WriteString("data")
	require.NoError(t, binary.Write(&b, binary.LittleEndian, uint32(pcm.Len())))
	b.Write(pcm.Bytes())
	return b.Bytes()
}

func TestFFmpegToMP3(t *testing.T) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	f := NewFFmpeg(bin)
	ctx := context.Background()

	out, err := f.ToMP3(ctx, wav(t))
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = f.ToMP3(ctx, []byte("definitely not audio"))
	assert.Error(t, err)
}

func TestFFmpegErrors(t *testing.T) {
	_, err := NewFFmpeg("").ToMP3(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewFFmpeg("/nonexistent/ffmpeg").ToMP3(context.Background(), []byte{1, 2, 3})
	assert.ErrorContains(t, err, "ffmpeg")
}
