// Package llmtest provides testify mocks for the llm interfaces.
package llmtest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/nkosi-ncube/CareIQ/internal/llm"
)

type Client struct {
	mock.Mock
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	args := c.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Named matches a request by its Name.
func Named(name string) interface{} {
	return mock.MatchedBy(func(req llm.Request) bool { return req.Name == name })
}

type Transcriber struct {
	mock.Mock
}

func (t *Transcriber) Transcribe(ctx context.Context, mp3 []byte) (string, error) {
	args := t.Called(ctx, mp3)
	return args.String(0), args.Error(1)
}

var (
	_ llm.Client      = (*Client)(nil)
	_ llm.Transcriber = (*Transcriber)(nil)
)
