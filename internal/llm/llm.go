// Package llm is the boundary to the generative-text and speech-to-text
// services. Every structured response is decoded and validated here, so no
// unchecked AI output reaches the pipeline.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nkosi-ncube/CareIQ/pkg/validator"
)

var (
	ErrEmptyResponse = errors.New("empty response from model")
	ErrInvalidOutput = errors.New("model output does not match schema")
)

// Request is one structured generation call.
type Request struct {
	// Name labels the call in logs and metrics.
	Name        string
	Instruction string
	// Schema is an example JSON document the response must follow.
	Schema string
	Input  string
	// Images are data URIs attached alongside Input.
	Images []string
}

// Client returns the raw JSON text produced for a request.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Transcriber converts MP3 audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, mp3 []byte) (string, error)
}

// Generate runs req and decodes the response into T, rejecting output that
// fails T's validate tags.
func Generate[T any](ctx context.Context, c Client, req Request) (*T, error) {
	raw, err := c.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return Decode[T](raw)
}

// Decode parses raw model output into T and validates it.
func Decode[T any](raw string) (*T, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyResponse
	}

	var out T
	dec := json.NewDecoder(strings.NewReader(stripFence(raw)))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON document", ErrInvalidOutput)
	}
	if err := validator.New().Validate(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return &out, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
