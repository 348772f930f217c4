package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
)

// DefaultCacheSize is the number of distinct batches a Client remembers.
const DefaultCacheSize = 512

// Client embeds batches of texts and memoizes the results per exact batch.
// It is safe for concurrent use; identical batches in flight at the same
// time share one provider call.
type Client struct {
	provider   Provider
	model      string
	cache      *batchCache
	group      singleflight.Group
	maxRetries uint64
	retryDelay time.Duration
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithModel sets the embedding model. Default: DefaultModel.
func WithModel(model string) Option {
	return func(c *Client) error {
		if model != "" {
			c.model = model
		}
		return nil
	}
}

// WithCacheSize bounds the number of cached batches. Default: DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(c *Client) error {
		if size <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidCacheSize, size)
		}
		c.cache = newBatchCache(size)
		return nil
	}
}

// WithRetry retries rate limited and 5xx provider calls up to maxRetries times
// with exponential backoff starting at baseDelay. Disabled by default.
func WithRetry(maxRetries uint64, baseDelay time.Duration) Option {
	return func(c *Client) error {
		c.maxRetries = maxRetries
		if baseDelay > 0 {
			c.retryDelay = baseDelay
		}
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// NewClient wraps provider with a bounded batch cache.
func NewClient(provider Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, ErrProviderNotSet
	}

	c := &Client{
		provider:   provider,
		model:      DefaultModel,
		cache:      newBatchCache(DefaultCacheSize),
		retryDelay: time.Second,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.log = c.log.With(logger.Component("embedding"))

	return c, nil
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Embed returns one vector per text, in order. A batch seen before (same
// texts, same order, same model) is served from the cache. Provider errors
// are returned as is.
//
// Concurrent calls for the same batch share one provider request. That
// request is not cancelled with any single caller's ctx; each caller stops
// waiting when its own ctx is done.
func (c *Client) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return []Vector{}, nil
	}

	key := batchKey(c.model, texts)
	if vectors, ok := c.cache.get(key); ok {
		c.log.DebugContext(ctx, "embedding cache hit", slog.Int("texts", len(texts)))
		return vectors, nil
	}

	// the shared request must outlive a cancelled caller; the provider's HTTP timeout bounds it
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// a call that finished between the miss above and here already filled the cache
		if vectors, ok := c.cache.get(key); ok {
			return vectors, nil
		}

		start := time.Now()
		vectors, err := c.call(flightCtx, texts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: sent %d, got %d", ErrVectorCountMismatch, len(texts), len(vectors))
		}

		c.cache.put(key, vectors)
		c.log.DebugContext(flightCtx, "embedding request completed",
			logger.Model(c.model),
			slog.Int("texts", len(texts)),
			logger.Duration(time.Since(start)),
		)
		return vectors, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return cloneVectors(res.Val.([]Vector)), nil
	}
}

// CacheLen returns the number of cached batches.
func (c *Client) CacheLen() int {
	return c.cache.len()
}

// ResetCache drops every cached batch.
func (c *Client) ResetCache() {
	c.cache.clear()
}

func (c *Client) call(ctx context.Context, texts []string) ([]Vector, error) {
	if c.maxRetries == 0 {
		return c.provider.Embed(ctx, c.model, texts)
	}

	var (
		vectors []Vector
		attempt int
	)
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		v, err := c.provider.Embed(ctx, c.model, texts)
		if err == nil {
			vectors = v
			return nil
		}
		if IsRetryable(err) {
			c.log.WarnContext(ctx, "embedding request failed, retrying", logger.Attempt(attempt), logger.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}
