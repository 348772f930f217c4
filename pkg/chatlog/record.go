package chatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tutorkit/pkg/prompt"
)

// Record is one logged completion: the messages sent and the raw provider response.
type Record struct {
	ChatID          string           `json:"chat_id"`
	Messages        []prompt.Message `json:"messages"`
	Completion      json.RawMessage  `json:"completion,omitempty"`
	LoggedTimestamp float64          `json:"logged_timestamp"`
}

// LoggedAt converts LoggedTimestamp (seconds since the epoch) to a time.
func (r Record) LoggedAt() time.Time {
	sec, frac := math.Modf(r.LoggedTimestamp)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// Store persists records in append order.
type Store interface {
	Append(ctx context.Context, r Record) error
	// Records returns every stored record in the order it was appended.
	Records(ctx context.Context) ([]Record, error)
}

// Cleaner is implemented by stores that can drop old records.
type Cleaner interface {
	// Cleanup removes data logged before cutoff and reports how many units
	// (files or rows) were deleted.
	Cleanup(ctx context.Context, cutoff time.Time) (int, error)
}

// GenerateChatID returns "<uuid>_<YYYYMMDD>_<epoch seconds>" for now.
func GenerateChatID(now time.Time) string {
	return fmt.Sprintf("%s_%s_%s",
		uuid.NewString(),
		now.Format("20060102"),
		strconv.FormatFloat(epochSeconds(now), 'f', -1, 64),
	)
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// decodeRecord parses one JSON document. ok is false for documents without a chat_id.
func decodeRecord(data []byte) (Record, bool, error) {
	var raw struct {
		ChatID          *string          `json:"chat_id"`
		Messages        []prompt.Message `json:"messages"`
		Completion      json.RawMessage  `json:"completion"`
		LoggedTimestamp float64          `json:"logged_timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, false, err
	}
	if raw.ChatID == nil {
		return Record{}, false, nil
	}
	return Record{
		ChatID:          *raw.ChatID,
		Messages:        raw.Messages,
		Completion:      raw.Completion,
		LoggedTimestamp: raw.LoggedTimestamp,
	}, true, nil
}

// isNil reports whether v is nil or an interface holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
