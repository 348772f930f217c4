package embedding_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/tutorkit/pkg/embedding"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Embed(ctx context.Context, model string, texts []string) ([]embedding.Vector, error) {
	args := m.Called(ctx, model, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]embedding.Vector), args.Error(1)
}

// lengthProvider embeds every text as {len(text), 1} and counts calls.
type lengthProvider struct {
	calls   atomic.Int64
	mu      sync.Mutex
	batches [][]string
	gate    chan struct{}
}

func (p *lengthProvider) Embed(ctx context.Context, model string, texts []string) ([]embedding.Vector, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.batches = append(p.batches, append([]string(nil), texts...))
	p.mu.Unlock()

	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([]embedding.Vector, len(texts))
	for i, t := range texts {
		out[i] = embedding.Vector{float64(len(t)), 1}
	}
	return out, nil
}

func (p *lengthProvider) recorded() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]string(nil), p.batches...)
}

// byteCounter counts one token per byte, which keeps expectations readable.
type byteCounter struct{}

func (byteCounter) Count(text string) int { return len(text) }
