package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/prompt"
)

const (
	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-3.5-turbo-0613"

	// DefaultBaseURL is the public OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	defaultTimeout = 60 * time.Second
)

// Result is the first choice of a completion plus the raw response body,
// which the chat log stores verbatim.
type Result struct {
	Message prompt.Message
	Model   string
	Raw     json.RawMessage
}

// Completer produces the next assistant message for a conversation.
type Completer interface {
	Complete(ctx context.Context, model string, messages []prompt.Message) (Result, error)
}

// Config configures the OpenAI client.
type Config struct {
	// APIKey is required for authentication.
	APIKey string

	// BaseURL points at an OpenAI compatible API root.
	// Default: https://api.openai.com/v1
	BaseURL string

	// HTTPClient allows custom transport settings.
	// Default: http.Client with 60s timeout
	HTTPClient *http.Client

	Logger *slog.Logger
}

// OpenAIClient calls the /chat/completions endpoint.
type OpenAIClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
	log      *slog.Logger
}

func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &OpenAIClient{
		apiKey:   cfg.APIKey,
		endpoint: baseURL + "/chat/completions",
		client:   client,
		log:      log.With(logger.Component("completion")),
	}, nil
}

// Complete sends messages and returns the first choice. An empty model uses DefaultModel.
func (c *OpenAIClient) Complete(ctx context.Context, model string, messages []prompt.Message) (Result, error) {
	if len(messages) == 0 {
		return Result{}, ErrNoMessages
	}
	if model == "" {
		model = DefaultModel
	}

	payload, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, &ProviderError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &ProviderError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, parseErrorResponse(resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Result{}, &ProviderError{StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return Result{}, ErrNoChoices
	}

	msg := parsed.Choices[0].Message
	if msg.Role == "" {
		msg.Role = prompt.RoleAssistant
	}

	c.log.DebugContext(ctx, "completion received",
		logger.Model(parsed.Model),
		logger.Duration(time.Since(start)),
		slog.Int("prompt_tokens", parsed.Usage.PromptTokens),
		slog.Int("completion_tokens", parsed.Usage.CompletionTokens),
	)

	return Result{Message: msg, Model: parsed.Model, Raw: json.RawMessage(body)}, nil
}

func parseErrorResponse(status int, body []byte) error {
	pe := &ProviderError{StatusCode: status}

	var errorResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		pe.Message = errorResp.Error.Message
		pe.Type = errorResp.Error.Type
		pe.Code = errorResp.Error.Code
		return pe
	}

	pe.Message = strings.TrimSpace(string(body))
	pe.Err = errors.New(http.StatusText(status))
	return pe
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []prompt.Message `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Index   int            `json:"index"`
		Message prompt.Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}
