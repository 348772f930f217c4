package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/tokenizer"
)

// PlanBatches splits texts into contiguous, ordered batches whose token sums
// stay within maxTokens. Texts are taken greedily left to right; a text that
// does not fit closes the current batch and opens the next one.
//
// A text that alone exceeds maxTokens still gets a batch of its own. It is
// not split and no error is returned; the provider decides whether to accept it.
func PlanBatches(texts []string, tokenCounts []int, maxTokens int) ([][]string, error) {
	if len(texts) != len(tokenCounts) {
		return nil, fmt.Errorf("%w: %d texts, %d counts", ErrTokenCountMismatch, len(texts), len(tokenCounts))
	}
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTokenLimit, maxTokens)
	}

	var (
		batches [][]string
		current []string
		sum     int
	)
	for i, text := range texts {
		n := tokenCounts[i]
		if len(current) > 0 && sum+n > maxTokens {
			batches = append(batches, current)
			current, sum = nil, 0
		}
		current = append(current, text)
		sum += n
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches, nil
}

// Batcher embeds arbitrarily many texts by planning provider-sized batches
// and sending them through a Client one after another.
type Batcher struct {
	client    *Client
	counter   tokenizer.Counter
	maxTokens int
	log       *slog.Logger
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

// WithMaxTokens overrides MaxTokensPerRequest.
func WithMaxTokens(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 0 {
			b.maxTokens = n
		}
	}
}

func WithBatcherLogger(l *slog.Logger) BatcherOption {
	return func(b *Batcher) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBatcher combines client with a token counter. The counter must use the
// encoding of client's model.
func NewBatcher(client *Client, counter tokenizer.Counter, opts ...BatcherOption) (*Batcher, error) {
	if client == nil {
		return nil, ErrProviderNotSet
	}
	if counter == nil {
		return nil, ErrCounterNotSet
	}

	b := &Batcher{
		client:    client,
		counter:   counter,
		maxTokens: MaxTokensPerRequest,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With(logger.Component("embedding_batcher"))

	return b, nil
}

// Embed returns one vector per text, in input order. The first failing batch
// aborts the call and its error is returned.
func (b *Batcher) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return []Vector{}, nil
	}

	counts := tokenizer.CountAll(b.counter, texts)
	batches, err := PlanBatches(texts, counts, b.maxTokens)
	if err != nil {
		return nil, err
	}

	vectors := make([]Vector, 0, len(texts))
	offset := 0
	for i, batch := range batches {
		tokens := 0
		for _, n := range counts[offset : offset+len(batch)] {
			tokens += n
		}
		if tokens > b.maxTokens {
			b.log.WarnContext(ctx, "text exceeds the per-request token limit, sending it alone",
				logger.Batch(i, len(batch), tokens))
		} else {
			b.log.DebugContext(ctx, "embedding batch", logger.Batch(i, len(batch), tokens))
		}

		out, err := b.client.Embed(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
		}
		vectors = append(vectors, out...)
		offset += len(batch)
	}

	return vectors, nil
}
