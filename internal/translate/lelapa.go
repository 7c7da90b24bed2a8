// Package translate talks to the Lelapa Vulavula translation API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nkosi-ncube/CareIQ/pkg/circuitbreaker"
)

// Provider translates a single piece of text.
type Provider interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// DefaultHalfOpenRequests covers the per-field fan-out of a typical bundle.
const DefaultHalfOpenRequests = 32

// Config for the Lelapa client. HalfOpenRequests is how many calls a
// recovering breaker admits; one bundle sends a call per field.
type Config struct {
	BaseURL          string
	Token            string
	SourceLanguage   string
	Timeout          time.Duration
	HalfOpenRequests uint32
	BreakerTimeout   time.Duration
}

type LelapaClient struct {
	baseURL    string
	token      string
	sourceLang string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
}

type translateRequest struct {
	InputText  string `json:"input_text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	OutputText []string `json:"output_text"`
}

func NewLelapaClient(cfg Config) (*LelapaClient, error) {
	if cfg.Token == "" {
		return nil, errors.New("translation token is required")
	}
	source := cfg.SourceLanguage
	if source == "" {
		source = "eng_Latn"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	halfOpen := cfg.HalfOpenRequests
	if halfOpen == 0 {
		halfOpen = DefaultHalfOpenRequests
	}
	openFor := cfg.BreakerTimeout
	if openFor == 0 {
		openFor = 30 * time.Second
	}

	return &LelapaClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		sourceLang: source,
		httpClient: &http.Client{Timeout: timeout},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "lelapa-translate",
			MaxRequests: halfOpen,
			Interval:    time.Minute,
			Timeout:     openFor,
		}),
	}, nil
}

func (c *LelapaClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var out string
	err := c.cb.Execute(func() error {
		var err error
		out, err = c.do(ctx, text, targetLang)
		return err
	})
	return out, err
}

func (c *LelapaClient) do(ctx context.Context, text, targetLang string) (string, error) {
	body, err := json.Marshal(translateRequest{
		InputText:  text,
		SourceLang: c.sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate/process", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CLIENT-TOKEN", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("translation API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode translation: %w", err)
	}
	if len(decoded.OutputText) == 0 || decoded.OutputText[0] == "" {
		return "", errors.New("translation API returned no text")
	}
	return decoded.OutputText[0], nil
}
