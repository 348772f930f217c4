// Package logger builds log/slog loggers for tutorkit components.
//
// New assembles a JSON or text handler, static attributes and optional
// context values:
//
//	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "tutor"))
//	log.InfoContext(ctx, "hint built", logger.ChatID(id), logger.HintType("hint_sequence"))
//
// Library packages take a *slog.Logger through an option and fall back to
// Discard, so nothing is written unless the application asks for it.
//
// The attribute helpers (Component, Model, ChatID, Batch, ...) keep key names
// consistent across packages.
package logger
