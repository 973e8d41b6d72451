package layerforge

import (
	"context"
	"log/slog"
)

// Notifier shows transient user-visible messages, such as a failed paste
// or upload. Implementations must not block.
type Notifier interface {
	Notify(level slog.Level, msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level slog.Level, msg string)

func (f NotifierFunc) Notify(level slog.Level, msg string) { f(level, msg) }

// LogNotifier forwards notifications to Logger.
type LogNotifier struct{}

func (LogNotifier) Notify(level slog.Level, msg string) {
	Logger().Log(context.Background(), level, msg, "notify", true)
}
