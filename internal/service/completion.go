package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// CompletionConfig holds configuration for the completion client.
type CompletionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// CompletionOptions sets per-call generation parameters.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
	// JSONOnly asks the service for its strict JSON response mode.
	JSONOnly bool
}

// OpenAICompleter calls an OpenAI-compatible chat completion endpoint.
type OpenAICompleter struct {
	client   *resty.Client
	model    string
	endpoint string
}

// NewOpenAICompleter creates a completion client.
func NewOpenAICompleter(cfg *CompletionConfig) *OpenAICompleter {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAICompleter{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
	}
}

// GetModel returns the model identifier being used.
func (c *OpenAICompleter) GetModel() string {
	return c.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one system/user message pair and returns the generated
// text. A non-success HTTP status is a *CompletionError; a success response
// with no choices returns an empty string with nil error so each stage can
// apply its own empty-output policy.
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONOnly {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return "", &CompletionError{Message: fmt.Sprintf("request failed: %v", err)}
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		msg := "completion service returned non-success status"
		if resp.Error != nil && resp.Error.Message != "" {
			msg = resp.Error.Message
		} else if len(httpResp.Body()) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, string(httpResp.Body()))
		}
		return "", &CompletionError{
			StatusCode: httpResp.StatusCode(),
			Message:    msg,
		}
	}

	if resp.Error != nil {
		return "", &CompletionError{Message: resp.Error.Message}
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
