package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/tutorkit/pkg/embedding"
	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/similarity"
)

// Embedder is satisfied by *embedding.Batcher and *embedding.Client.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]embedding.Vector, error)
}

// Mapping ties a placeholder to a reference corpus. The query is built from
// the slot map values named in QuerySlots.
type Mapping struct {
	QuerySlots []string `yaml:"query_slots"`
	Corpus     []string `yaml:"corpus"`
}

// Selection is the corpus entry picked for a placeholder.
type Selection struct {
	Index int
	Score float64
	Text  string
}

// MappedEmbedding substitutes mapped placeholders with the corpus entry
// closest to the current query and falls back to literal slot lookup for
// the rest. Corpus embeddings are computed once per placeholder and kept for
// the lifetime of the strategy. Not safe for concurrent use.
type MappedEmbedding struct {
	embedder   Embedder
	mappings   map[string]Mapping
	slots      SlotMap
	corpora    map[string][]embedding.Vector
	selections map[string]Selection
	log        *slog.Logger
}

// MappedOption configures a MappedEmbedding.
type MappedOption func(*MappedEmbedding)

func WithLogger(l *slog.Logger) MappedOption {
	return func(m *MappedEmbedding) {
		if l != nil {
			m.log = l
		}
	}
}

// WithInitialSlots seeds the slot map.
func WithInitialSlots(values SlotMap) MappedOption {
	return func(m *MappedEmbedding) {
		m.slots = values.Clone()
	}
}

// NewMappedEmbedding validates mappings and returns a strategy backed by embedder.
func NewMappedEmbedding(embedder Embedder, mappings map[string]Mapping, opts ...MappedOption) (*MappedEmbedding, error) {
	if embedder == nil {
		return nil, ErrEmbedderNotSet
	}

	cleaned := make(map[string]Mapping, len(mappings))
	for slot, mapping := range mappings {
		if len(mapping.QuerySlots) == 0 {
			return nil, fmt.Errorf("%w: %q has no query slots", ErrInvalidMapping, slot)
		}
		if len(mapping.Corpus) == 0 {
			return nil, fmt.Errorf("%w: %q has an empty corpus", ErrInvalidMapping, slot)
		}
		cleaned[slot] = Mapping{
			QuerySlots: append([]string(nil), mapping.QuerySlots...),
			Corpus:     append([]string(nil), mapping.Corpus...),
		}
	}

	m := &MappedEmbedding{
		embedder:   embedder,
		mappings:   cleaned,
		slots:      SlotMap{},
		corpora:    make(map[string][]embedding.Vector),
		selections: make(map[string]Selection),
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("retrieval"))

	return m, nil
}

func (m *MappedEmbedding) UpdateMap(values SlotMap) {
	m.slots = values.Clone()
}

func (m *MappedEmbedding) Map() SlotMap {
	return m.slots.Clone()
}

// MappedSlots returns the mapped placeholder names, sorted.
func (m *MappedEmbedding) MappedSlots() []string {
	names := make([]string, 0, len(m.mappings))
	for name := range m.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Selections returns the picks made by the most recent resolutions, keyed by placeholder.
func (m *MappedEmbedding) Selections() map[string]Selection {
	out := make(map[string]Selection, len(m.selections))
	for k, v := range m.selections {
		out[k] = v
	}
	return out
}

// ResolveSlots substitutes mapped placeholders with retrieved corpus text and
// the others with slot map values. Embedding failures are returned wrapped
// with the slot name.
func (m *MappedEmbedding) ResolveSlots(ctx context.Context, text string) (string, error) {
	return Substitute(ctx, text, m.resolve)
}

func (m *MappedEmbedding) resolve(ctx context.Context, slot string) (string, error) {
	mapping, ok := m.mappings[slot]
	if !ok {
		value, ok := m.slots[slot]
		if !ok {
			return "", &MissingSlotError{Slot: slot, Reason: "no value in slot map"}
		}
		return value, nil
	}

	query := m.queryText(mapping)
	if query == "" {
		return "", &MissingSlotError{
			Slot:   slot,
			Reason: fmt.Sprintf("query slots %v are empty", mapping.QuerySlots),
		}
	}

	corpus, err := m.corpus(ctx, slot, mapping)
	if err != nil {
		return "", fmt.Errorf("embed corpus for slot %q: %w", slot, err)
	}

	queryVectors, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("embed query for slot %q: %w", slot, err)
	}
	if len(queryVectors) != 1 {
		return "", fmt.Errorf("embed query for slot %q: %w", slot, embedding.ErrVectorCountMismatch)
	}

	idx, score, err := similarity.FindMostSimilar(queryVectors[0], corpus)
	if err != nil {
		return "", fmt.Errorf("match slot %q: %w", slot, err)
	}

	m.selections[slot] = Selection{Index: idx, Score: score, Text: mapping.Corpus[idx]}
	m.log.DebugContext(ctx, "retrieved corpus entry",
		logger.Slot(slot),
		slog.Int("index", idx),
		slog.Float64("score", score),
	)

	return mapping.Corpus[idx], nil
}

func (m *MappedEmbedding) queryText(mapping Mapping) string {
	parts := make([]string, 0, len(mapping.QuerySlots))
	for _, name := range mapping.QuerySlots {
		if v := strings.TrimSpace(m.slots[name]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (m *MappedEmbedding) corpus(ctx context.Context, slot string, mapping Mapping) ([]embedding.Vector, error) {
	if vectors, ok := m.corpora[slot]; ok {
		return vectors, nil
	}

	vectors, err := m.embedder.Embed(ctx, mapping.Corpus)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(mapping.Corpus) {
		return nil, embedding.ErrVectorCountMismatch
	}

	// zero vectors stay as is and are skipped by FindMostSimilar
	normalized := make([]embedding.Vector, len(vectors))
	for i, v := range vectors {
		n, err := similarity.NormalizeVector(v)
		if err != nil {
			n = v
		}
		normalized[i] = n
	}

	m.corpora[slot] = normalized
	return normalized, nil
}

// LoadMappings reads placeholder mappings from YAML:
//
//	rori_microlesson_texts:
//	  query_slots: [question, lesson]
//	  corpus:
//	    - "Adding fractions with like denominators ..."
func LoadMappings(r io.Reader) (map[string]Mapping, error) {
	var mappings map[string]Mapping
	if err := yaml.NewDecoder(r).Decode(&mappings); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]Mapping{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrMappingsFile, err)
	}
	return mappings, nil
}

// LoadMappingsFile reads mappings from the YAML file at path.
func LoadMappingsFile(path string) (map[string]Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMappingsFile, err)
	}
	defer func() { _ = f.Close() }()

	return LoadMappings(f)
}
