package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/tutorkit/pkg/chatlog"
	"github.com/dmitrymomot/tutorkit/pkg/completion"
	"github.com/dmitrymomot/tutorkit/pkg/embedding"
	"github.com/dmitrymomot/tutorkit/pkg/pg"
	"github.com/dmitrymomot/tutorkit/pkg/redis"
	"github.com/dmitrymomot/tutorkit/pkg/retrieval"
	"github.com/dmitrymomot/tutorkit/pkg/tokenizer"
)

// chatBackend is the store behind the configured chat log driver. ping
// reports the round trip time to it.
type chatBackend struct {
	store chatlog.Store
	ping  func(ctx context.Context) (time.Duration, error)
	close func()
}

// openBackend connects to the configured CHATLOG_DRIVER. close is never nil.
func (a *app) openBackend(ctx context.Context) (chatBackend, error) {
	noop := chatBackend{close: func() {}}

	switch a.cfg.ChatlogDriver {
	case driverFile, "":
		s, err := chatlog.NewFileStore(a.cfg.ChatlogDir)
		if err != nil {
			return noop, err
		}
		return chatBackend{
			store: s,
			ping: func(context.Context) (time.Duration, error) {
				start := time.Now()
				_, err := s.Files()
				return time.Since(start), err
			},
			close: func() {},
		}, nil

	case driverRedis:
		client, err := redis.Connect(ctx, a.cfg.Redis)
		if err != nil {
			return noop, err
		}
		s, err := chatlog.NewRedisStore(client, a.cfg.ChatlogRedisKey)
		if err != nil {
			_ = client.Close()
			return noop, err
		}
		return chatBackend{
			store: s,
			ping:  func(ctx context.Context) (time.Duration, error) { return redis.Ping(ctx, client) },
			close: func() { _ = client.Close() },
		}, nil

	case driverPostgres:
		pool, err := pg.Connect(ctx, a.cfg.Postgres)
		if err != nil {
			return noop, err
		}
		if err := pg.Migrate(ctx, pool, chatlog.Migrations, chatlog.MigrationsDir, a.cfg.Postgres, a.log); err != nil {
			pool.Close()
			return noop, err
		}
		s, err := chatlog.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return noop, err
		}
		return chatBackend{
			store: s,
			ping:  func(ctx context.Context) (time.Duration, error) { return pg.Ping(ctx, pool) },
			close: pool.Close,
		}, nil

	default:
		return noop, fmt.Errorf("unknown CHATLOG_DRIVER %q: use %s, %s or %s",
			a.cfg.ChatlogDriver, driverFile, driverRedis, driverPostgres)
	}
}

// openChatLog builds the chat log for the configured driver. The returned
// close function releases any connection and is never nil.
func (a *app) openChatLog(ctx context.Context) (*chatlog.Log, func(), error) {
	b, err := a.openBackend(ctx)
	if err != nil {
		return nil, b.close, err
	}

	l, err := chatlog.NewLog(b.store, chatlog.WithLogger(a.log))
	if err != nil {
		b.close()
		return nil, func() {}, err
	}
	return l, b.close, nil
}

// newBatcher wires the OpenAI embedding provider, the cached client and a
// tokenizer for the same model.
func (a *app) newBatcher() (*embedding.Batcher, error) {
	if err := a.requireAPIKey(); err != nil {
		return nil, err
	}

	provider, err := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		APIKey:  a.cfg.OpenAIAPIKey,
		BaseURL: a.cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, err
	}

	client, err := embedding.NewClient(provider,
		embedding.WithModel(a.cfg.EmbeddingModel),
		embedding.WithCacheSize(a.cfg.EmbeddingCacheSize),
		embedding.WithRetry(a.cfg.EmbeddingMaxRetries, a.cfg.EmbeddingRetryDelay),
		embedding.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}

	counter, err := tokenizer.NewTiktoken(client.Model())
	if err != nil {
		return nil, err
	}

	return embedding.NewBatcher(client, counter,
		embedding.WithMaxTokens(a.cfg.EmbeddingMaxTokens),
		embedding.WithBatcherLogger(a.log),
	)
}

// newStrategy returns a literal strategy, or an embedding backed one when a
// corpus mapping file is given.
func (a *app) newStrategy(corpusPath string) (retrieval.Strategy, error) {
	if corpusPath == "" {
		return retrieval.NewLiteral(nil), nil
	}

	mappings, err := retrieval.LoadMappingsFile(corpusPath)
	if err != nil {
		return nil, err
	}

	batcher, err := a.newBatcher()
	if err != nil {
		return nil, err
	}

	return retrieval.NewMappedEmbedding(batcher, mappings, retrieval.WithLogger(a.log))
}

func (a *app) newCompleter() (completion.Completer, error) {
	if err := a.requireAPIKey(); err != nil {
		return nil, err
	}
	return completion.NewOpenAIClient(completion.Config{
		APIKey:  a.cfg.OpenAIAPIKey,
		BaseURL: a.cfg.OpenAIBaseURL,
		Logger:  a.log,
	})
}
