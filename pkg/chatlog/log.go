package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/prompt"
)

// Field selects the message field Search matches against.
type Field string

const (
	FieldContent Field = "content"
	FieldRole    Field = "role"
)

// Stats summarizes the reconstructed chats.
type Stats struct {
	TotalSessions int       `json:"total_sessions"`
	TotalMessages int       `json:"total_messages"`
	Earliest      time.Time `json:"earliest_date"`
	Latest        time.Time `json:"latest_date"`
	AvgMessages   float64   `json:"avg_messages"`
}

// Log writes completion records to a Store and reconstructs the latest
// state of every chat from it. Safe for concurrent use.
type Log struct {
	store Store
	now   func() time.Time
	log   *slog.Logger

	mu    sync.Mutex
	chats map[string]Record
}

// LogOption configures a Log.
type LogOption func(*Log)

func WithLogger(l *slog.Logger) LogOption {
	return func(lg *Log) {
		if l != nil {
			lg.log = l
		}
	}
}

// WithClock overrides the time source for record timestamps and cleanup.
func WithClock(now func() time.Time) LogOption {
	return func(lg *Log) {
		if now != nil {
			lg.now = now
		}
	}
}

func NewLog(store Store, opts ...LogOption) (*Log, error) {
	if store == nil {
		return nil, ErrStoreNotSet
	}
	l := &Log{
		store: store,
		now:   time.Now,
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.log = l.log.With(logger.Component("chatlog"))
	return l, nil
}

// LogCompletion appends a record for chatID with the messages sent and the
// provider response. completion may be a json.RawMessage, []byte of JSON, or
// any value encodable with encoding/json.
func (l *Log) LogCompletion(ctx context.Context, chatID string, messages []prompt.Message, completion any) error {
	if chatID == "" {
		return ErrEmptyChatID
	}

	raw, err := encodeCompletion(completion)
	if err != nil {
		return err
	}

	r := Record{
		ChatID:          chatID,
		Messages:        slices.Clone(messages),
		Completion:      raw,
		LoggedTimestamp: epochSeconds(l.now()),
	}
	if err := l.store.Append(ctx, r); err != nil {
		return fmt.Errorf("append chat record: %w", err)
	}

	l.mu.Lock()
	if l.chats != nil {
		merge(l.chats, r)
	}
	l.mu.Unlock()

	l.log.DebugContext(ctx, "chat completion logged",
		logger.ChatID(chatID),
		slog.Int("messages", len(messages)),
	)
	return nil
}

func encodeCompletion(completion any) (json.RawMessage, error) {
	switch v := completion.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(v) == 0 {
			return nil, nil
		}
		if !json.Valid(v) {
			return nil, ErrInvalidCompletion
		}
		return slices.Clone(v), nil
	case []byte:
		return encodeCompletion(json.RawMessage(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCompletion, err)
		}
		return data, nil
	}
}

// merge keeps the record with the strictly greater timestamp; ties keep the existing one.
func merge(chats map[string]Record, r Record) {
	if cur, ok := chats[r.ChatID]; !ok || r.LoggedTimestamp > cur.LoggedTimestamp {
		chats[r.ChatID] = r
	}
}

// LoadPreviousChats reconstructs chat id -> latest record from the store.
// With useCached, a previous result is reused instead of re-reading the store.
func (l *Log) LoadPreviousChats(ctx context.Context, useCached bool) (map[string]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.loadLocked(ctx, useCached); err != nil {
		return nil, err
	}
	return maps.Clone(l.chats), nil
}

func (l *Log) loadLocked(ctx context.Context, useCached bool) error {
	if l.chats != nil && useCached {
		return nil
	}

	records, err := l.store.Records(ctx)
	if err != nil {
		return fmt.Errorf("load chat records: %w", err)
	}

	chats := make(map[string]Record, len(records))
	for _, r := range records {
		merge(chats, r)
	}
	l.chats = chats

	l.log.InfoContext(ctx, "previous chats loaded",
		slog.Int("records", len(records)),
		slog.Int("chats", len(chats)),
	)
	return nil
}

// snapshot returns the cached chats, loading them on first use.
func (l *Log) snapshot(ctx context.Context) (map[string]Record, error) {
	return l.LoadPreviousChats(ctx, true)
}

// Get returns the latest record of chatID.
func (l *Log) Get(ctx context.Context, chatID string) (Record, error) {
	chats, err := l.snapshot(ctx)
	if err != nil {
		return Record{}, err
	}
	r, ok := chats[chatID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
	}
	return r, nil
}

// MatchingChatIDs returns, sorted, the ids of chats whose messages start with messages.
func (l *Log) MatchingChatIDs(ctx context.Context, messages []prompt.Message) ([]string, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	chats, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for id, r := range chats {
		if len(r.Messages) >= len(messages) && slices.Equal(r.Messages[:len(messages)], messages) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Search returns chats with at least one message whose field contains
// keyword, case-insensitively, ordered by logged time.
func (l *Log) Search(ctx context.Context, keyword string, field Field) ([]Record, error) {
	if field != FieldContent && field != FieldRole {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	chats, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	var matches []Record
	for _, r := range chats {
		for _, m := range r.Messages {
			value := m.Content
			if field == FieldRole {
				value = string(m.Role)
			}
			if strings.Contains(strings.ToLower(value), needle) {
				matches = append(matches, r)
				break
			}
		}
	}
	sortRecords(matches)
	return matches, nil
}

// List returns every chat ordered by logged time.
func (l *Log) List(ctx context.Context) ([]Record, error) {
	chats, err := l.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	records := slices.Collect(maps.Values(chats))
	sortRecords(records)
	return records, nil
}

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].LoggedTimestamp != records[j].LoggedTimestamp {
			return records[i].LoggedTimestamp < records[j].LoggedTimestamp
		}
		return records[i].ChatID < records[j].ChatID
	})
}

// Statistics summarizes every reconstructed chat. An empty log yields zero Stats.
func (l *Log) Statistics(ctx context.Context) (Stats, error) {
	chats, err := l.snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	if len(chats) == 0 {
		return stats, nil
	}

	minTS, maxTS := 0.0, 0.0
	first := true
	for _, r := range chats {
		stats.TotalMessages += len(r.Messages)
		if first || r.LoggedTimestamp < minTS {
			minTS = r.LoggedTimestamp
		}
		if first || r.LoggedTimestamp > maxTS {
			maxTS = r.LoggedTimestamp
		}
		first = false
	}

	stats.TotalSessions = len(chats)
	stats.AvgMessages = float64(stats.TotalMessages) / float64(stats.TotalSessions)
	stats.Earliest = Record{LoggedTimestamp: minTS}.LoggedAt()
	stats.Latest = Record{LoggedTimestamp: maxTS}.LoggedAt()
	return stats, nil
}

// Cleanup asks the store to drop data older than olderThan. Stores that do
// not implement Cleaner return ErrCleanupUnsupported. The cached chats are
// dropped so the next read reflects the store.
func (l *Log) Cleanup(ctx context.Context, olderThan time.Duration) (int, error) {
	cleaner, ok := l.store.(Cleaner)
	if !ok {
		return 0, ErrCleanupUnsupported
	}

	cutoff := l.now().Add(-olderThan)
	deleted, err := cleaner.Cleanup(ctx, cutoff)

	l.mu.Lock()
	l.chats = nil
	l.mu.Unlock()

	l.log.InfoContext(ctx, "old chat logs deleted",
		slog.Int("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)
	return deleted, err
}
