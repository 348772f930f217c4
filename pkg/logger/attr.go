package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Model(name string) slog.Attr {
	return slog.String("model", name)
}

func ChatID(id string) slog.Attr {
	return slog.String("chat_id", id)
}

func HintType(name string) slog.Attr {
	return slog.String("hint_type", name)
}

func Slot(name string) slog.Attr {
	return slog.String("slot", name)
}

// Batch records the position of a request batch and its size.
func Batch(index, texts, tokens int) slog.Attr {
	return slog.Group("batch",
		slog.Int("index", index),
		slog.Int("texts", texts),
		slog.Int("tokens", tokens),
	)
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
