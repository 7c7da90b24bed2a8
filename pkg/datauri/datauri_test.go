package datauri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("data:audio/webm;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "audio/webm", d.MIMEType)
	assert.Equal(t, []byte("hello"), d.Data)
	assert.True(t, d.HasType("audio"))
	assert.False(t, d.HasType("image"))
}

func TestParseWithCodecParameter(t *testing.T) {
	d, err := Parse("data:audio/webm;codecs=opus;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "audio/webm", d.MIMEType)
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]error{
		"not a uri":                       ErrMalformed,
		"data:audio/mp3,aGVsbG8=":         ErrMalformed,
		"data:audio/mp3;base64,":          ErrEmptyPayload,
		"data:audio/mp3;base64,!!notb64!": ErrMalformed,
	}
	for input, want := range cases {
		_, err := Parse(input)
		assert.ErrorIs(t, err, want, input)
	}
}
