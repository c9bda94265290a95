// Package llm is a minimal client for OpenAI-compatible chat completion APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultTemperature = 0.1
	completionsPath    = "/chat/completions"
)

var (
	ErrEmptyCompletion = errors.New("completion returned no content")
	ErrNoJSONObject    = errors.New("completion contains no JSON object")
)

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion API error (status %d): %s", e.StatusCode, e.Message)
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Config holds connection settings for the completion API.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls a chat completion endpoint. It never retries; callers decide.
type Client struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

// NewClient creates a completion client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		httpClient: httpClient,
		model:      cfg.Model,
		logger:     logger,
	}
}

// CompleteJSON asks for a low-temperature, JSON-only completion and returns
// the span from the first "{" to the last "}" of the answer.
func (c *Client) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	request := completionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    DefaultTemperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var response completionResponse
	var apiErr errorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		SetError(&apiErr).
		Post(completionsPath)
	if err != nil {
		return "", fmt.Errorf("call completion API: %w", err)
	}
	if resp.IsError() {
		message := apiErr.Error.Message
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return "", &APIError{StatusCode: resp.StatusCode(), Message: message}
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	content := response.Choices[0].Message.Content

	c.logger.Debug("completion received",
		zap.String("model", c.model),
		zap.Int("length", len(content)),
	)
	return ExtractJSONObject(content)
}

// ExtractJSONObject returns the text between the first "{" and the last "}".
// Models often wrap JSON in prose or code fences.
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}
