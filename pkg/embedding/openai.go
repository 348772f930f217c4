package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultOpenAIBaseURL is the public OpenAI API root.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	defaultTimeout = 30 * time.Second
)

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	// APIKey is required for authentication.
	APIKey string

	// BaseURL points at an OpenAI compatible API root.
	// Default: https://api.openai.com/v1
	BaseURL string

	// HTTPClient allows custom transport settings.
	// Default: http.Client with 30s timeout
	HTTPClient *http.Client
}

// OpenAIProvider implements Provider against the /embeddings endpoint.
type OpenAIProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewOpenAIProvider creates a provider from config.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &OpenAIProvider{
		apiKey:   config.APIKey,
		endpoint: baseURL + "/embeddings",
		client:   client,
	}, nil
}

// Embed sends texts as a single request. It does not split or retry;
// request sizing is the batch planner's job.
func (p *OpenAIProvider) Embed(ctx context.Context, model string, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return []Vector{}, nil
	}

	jsonData, err := json.Marshal(embeddingsRequest{Model: model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var response embeddingsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}

	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrVectorCountMismatch, len(texts), len(response.Data))
	}

	// the API documents data as ordered, but index is authoritative
	sort.SliceStable(response.Data, func(i, j int) bool {
		return response.Data[i].Index < response.Data[j].Index
	})

	vectors := make([]Vector, len(response.Data))
	for i, item := range response.Data {
		vectors[i] = Vector(item.Embedding)
	}
	return vectors, nil
}

func parseErrorResponse(status int, body []byte) error {
	pe := &ProviderError{StatusCode: status}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		pe.Message = apiErr.Error.Message
		pe.Type = apiErr.Error.Type
		pe.Code = apiErr.Error.Code

		msg := strings.ToLower(pe.Message)
		if pe.Code == "" && strings.Contains(msg, "rate limit") {
			pe.Code = "rate_limit_exceeded"
		}
		if pe.Code == "" && strings.Contains(msg, "context length") {
			pe.Code = "context_length_exceeded"
		}
		return pe
	}

	pe.Message = strings.TrimSpace(string(body))
	pe.Err = errors.New(http.StatusText(status))
	return pe
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
