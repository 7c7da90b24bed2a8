package llm

import (
	"bytes"
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nkosi-ncube/CareIQ/pkg/logger"
	"github.com/nkosi-ncube/CareIQ/pkg/metrics"
)

type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a proxy.
	BaseURL            string
	ChatModel          string
	TranscriptionModel string
	Temperature        float32
}

// OpenAIClient implements Client and Transcriber.
type OpenAIClient struct {
	client             *openai.Client
	chatModel          string
	transcriptionModel string
	temperature        float32
	logger             *logger.Logger
	metrics            *metrics.Metrics
}

func NewOpenAIClient(cfg OpenAIConfig, log *logger.Logger, m *metrics.Metrics) *OpenAIClient {
	transcriptionModel := cfg.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = openai.Whisper1
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client:             openai.NewClientWithConfig(clientConfig),
		chatModel:          cfg.ChatModel,
		transcriptionModel: transcriptionModel,
		temperature:        cfg.Temperature,
		logger:             log,
		metrics:            m,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (text string, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveAICall(req.Name, start, err)
		if err != nil {
			c.logger.Error(err, "generation call failed", "operation", req.Name)
		}
	}()

	system := req.Instruction
	if req.Schema != "" {
		system += "\n\nRespond only with a JSON object of this form:\n" + req.Schema
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 {
		user.Content = req.Input
	} else {
		parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Input}}
		for _, uri := range req.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: uri, Detail: openai.ImageURLDetailAuto},
			})
		}
		user.MultiContent = parts
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			user,
		},
		Temperature:    c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion %s: %w", req.Name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Transcribe(ctx context.Context, mp3 []byte) (text string, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveAICall("transcribe", start, err) }()

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: "audio.mp3",
		Reader:   bytes.NewReader(mp3),
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}
