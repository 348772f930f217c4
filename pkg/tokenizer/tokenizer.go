package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Counter returns the number of tokens in a single text.
type Counter interface {
	Count(text string) int
}

// CountAll counts every text with c. The result has the same length and order as texts.
func CountAll(c Counter, texts []string) []int {
	counts := make([]int, len(texts))
	for i, text := range texts {
		counts[i] = c.Count(text)
	}
	return counts
}

var loaderOnce sync.Once

// Tiktoken counts tokens with the BPE encoding registered for a model.
type Tiktoken struct {
	model string
	enc   *tiktoken.Tiktoken
}

// NewTiktoken builds a counter for the given model identifier.
// The identifier must be the one used for the embedding request.
func NewTiktoken(model string) (*Tiktoken, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, ErrEmptyModel
	}

	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %s", ErrUnknownModel, model), err)
	}

	return &Tiktoken{model: model, enc: enc}, nil
}

// Count returns the token count of text. Special tokens are encoded as plain text.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Model returns the model the encoding was resolved for.
func (t *Tiktoken) Model() string {
	return t.model
}

// Estimator approximates token counts at 1.3 tokens per whitespace separated word.
type Estimator struct{}

func (Estimator) Count(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(float64(words) * 1.3)
}
