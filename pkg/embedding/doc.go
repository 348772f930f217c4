// Package embedding turns texts into vectors through an OpenAI compatible
// embeddings API while staying inside the provider's per-request token limit.
//
// The package has three layers:
//
//   - Provider / OpenAIProvider: one HTTP request per batch, no splitting, no retry.
//   - Client: memoizes results per exact ordered batch (model included) in a
//     bounded LRU and collapses concurrent identical requests into one call.
//   - Batcher: counts tokens, plans batches with PlanBatches and sends them
//     through a Client in order, so output order always matches input order.
//
// # Usage
//
//	provider, err := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	client, err := embedding.NewClient(provider, embedding.WithCacheSize(512))
//	counter, err := tokenizer.NewTiktoken(client.Model())
//	batcher, err := embedding.NewBatcher(client, counter)
//
//	vectors, err := batcher.Embed(ctx, lessons)
//
// # Caching
//
// The cache key is the whole batch. Embedding ["a", "b"] and later ["a"]
// issues two requests: the provider bills per request, so the cache mirrors
// requests rather than individual texts. The cache lives as long as the
// Client and is never persisted.
//
// # Errors
//
// Provider failures are *ProviderError values matching ErrProvider; rate
// limits also match ErrRateLimitExceeded and oversized inputs
// ErrContextLengthExceeded. The client does not retry unless WithRetry is
// given, in which case only rate limits and 5xx responses are retried.
//
// A single text larger than MaxTokensPerRequest is sent in a batch of its
// own rather than split or rejected.
package embedding
