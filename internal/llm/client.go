// Package llm provides a chat completion client for OpenAI-compatible
// APIs such as Cerebras.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/Nimavk1313/Personal-Assistant/internal/errors"
	"github.com/Nimavk1313/Personal-Assistant/internal/resilience"
	"github.com/Nimavk1313/Personal-Assistant/internal/syncx"
)

const (
	// RoleSystem, RoleUser, and RoleAssistant are the chat message roles.
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	defaultRequestTimeout = 60 * time.Second
	maxErrorBody          = 512
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Params are generation settings. They can be swapped at runtime
// through the configuration API.
type Params struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt"`
}

// Options configure a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Params  Params

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
	Retry      resilience.RetryConfig
	Breaker    *resilience.Breaker
}

// Client talks to a chat completion endpoint. A client with no API key
// is constructed in an unavailable state and fails fast.
type Client struct {
	apiKey  string
	baseURL string
	params  *syncx.RWGuard[Params]
	http    *http.Client
	retry   resilience.RetryConfig
	breaker *resilience.Breaker
}

// New creates a chat completion client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	retry := opts.Retry
	if retry.MaxRetries == 0 {
		retry = resilience.LLMRetryConfig()
	}
	breaker := opts.Breaker
	if breaker == nil {
		breaker = resilience.NewBreaker("llm", resilience.LLMConfig())
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		params:  syncx.NewGuard(opts.Params),
		http:    httpClient,
		retry:   retry,
		breaker: breaker,
	}
}

// Available reports whether the client has an API key configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Params returns the current generation settings.
func (c *Client) Params() Params {
	return c.params.Get()
}

// SetParams replaces the generation settings.
func (c *Client) SetParams(p Params) {
	c.params.Set(p)
}

// SetSystemPrompt replaces only the system prompt.
func (c *Client) SetSystemPrompt(prompt string) {
	c.params.Write(func(p *Params) {
		p.SystemPrompt = prompt
	})
}

// Chat sends the messages and returns the assistant reply. Calls are
// retried on transient failures and shed when the breaker is open.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if !c.Available() {
		return "", apperrors.New(apperrors.CodeLLMUnavailable, "no API key configured")
	}
	if len(messages) == 0 {
		return "", apperrors.New(apperrors.CodeInvalidArgument, "no messages")
	}

	var reply string
	err := resilience.Retry(ctx, c.retry, func() error {
		result, err := resilience.ExecuteWithResult(c.breaker, func() (string, error) {
			return c.complete(ctx, messages)
		})
		if errors.Is(err, resilience.ErrOpen) {
			return apperrors.Wrap(err, apperrors.CodeLLMUnavailable, "chat completions shed")
		}
		reply = result
		return err
	})
	return reply, err
}

// ChatSimple sends a single user message under the configured system
// prompt, with no extra context.
func (c *Client) ChatSimple(ctx context.Context, message, systemPrompt string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = c.Params().SystemPrompt
	}
	return c.Chat(ctx, []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: message},
	})
}

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Stream              bool      `json:"stream"`
	MaxCompletionTokens int       `json:"max_completion_tokens"`
	Temperature         float64   `json:"temperature"`
	TopP                float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	p := c.params.Get()
	body, err := json.Marshal(chatRequest{
		Model:               p.Model,
		Messages:            messages,
		Stream:              false,
		MaxCompletionTokens: p.MaxTokens,
		Temperature:         p.Temperature,
		TopP:                p.TopP,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMAPIError, "encode chat request")
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMAPIError, "build chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMAPIError, "chat completions request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMAPIError, "decode chat response")
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeLLMAPIError, "empty choices in chat response")
	}
	return parsed.Choices[0].Message.Content, nil
}

// statusError maps an API error response onto an error code.
func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("chat completions returned %d: %s", resp.StatusCode, snippet)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.New(apperrors.CodeLLMRateLimited, msg)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.New(apperrors.CodeLLMUnavailable, msg)
	case resp.StatusCode >= 500:
		return apperrors.New(apperrors.CodeLLMAPIError, msg)
	default:
		return apperrors.New(apperrors.CodeInvalidArgument, msg)
	}
}
