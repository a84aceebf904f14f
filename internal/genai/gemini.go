// Package genai calls the Gemini generateContent endpoint to phrase one
// coaching sentence. The feature is optional: a client built without an API
// key is disabled, which callers treat as a normal configuration state.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/log"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 10 * time.Second
)

// ErrDisabled is returned by GenerateTip when no API key is configured.
var ErrDisabled = errors.New("genai: no API key configured")

// ErrNoCandidates is returned when the response decodes but carries no
// generated text.
var ErrNoCandidates = errors.New("genai: response contains no text candidate")

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if strings.TrimSpace(base) != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout bounds each generateContent call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient builds a Gemini client. The key is passed explicitly; there is no
// ambient credential lookup. An empty key yields a disabled client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		model:   defaultModel,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Request and response shapes for models.generateContent. Only the fields we
// read are modeled; absence of any of them is a uniform "no result".
type (
	generateRequest struct {
		Contents []content `json:"contents"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generateResponse struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
)

// GenerateTip sends the prompt and returns the first generated text candidate.
// Every failure mode (disabled, transport error, non-200, malformed or empty
// response) comes back as an error for the caller to absorb.
func (c *Client) GenerateTip(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused, then fail uniformly.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("generateContent status %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := decoded.firstText()
	if text == "" {
		return "", ErrNoCandidates
	}

	slog.DebugContext(ctx, "Generated coaching tip",
		log.FieldComponent, log.ComponentGenAI,
		log.FieldModel, c.model,
		"tip_length", len(text))

	return text, nil
}

// firstText walks candidates[0].content.parts[0].text, treating any missing
// level as absent rather than panicking on a surprising shape.
func (r generateResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0].Text)
}
