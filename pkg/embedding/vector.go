package embedding

import "context"

const (
	// DefaultModel is the embedding model the token limits below are defined for.
	DefaultModel = "text-embedding-ada-002"

	// EmbeddingDim is the vector length of DefaultModel.
	EmbeddingDim = 1536

	// MaxTokensPerRequest is the provider's token ceiling for one embedding request.
	MaxTokensPerRequest = 8191
)

// Vector is one embedding. Vectors handed out by this package are never shared with its cache.
type Vector []float64

// Provider calls an embedding API for one batch of texts.
// Implementations must return exactly one vector per text, in input order.
type Provider interface {
	Embed(ctx context.Context, model string, texts []string) ([]Vector, error)
}

func cloneVectors(in []Vector) []Vector {
	out := make([]Vector, len(in))
	for i, v := range in {
		out[i] = append(Vector(nil), v...)
	}
	return out
}
