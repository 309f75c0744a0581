package settings

import (
	"context"
	"log/slog"
)

const (
	KeyDomains = "domains"
	KeyLogging = "logging"

	LoggingOn  = "on"
	LoggingOff = "off"
)

// Store is a persisted string-keyed configuration store. Get returns an
// empty string and no error for a key that was never set.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SetDefault writes value under key only when the key is currently empty.
func SetDefault(ctx context.Context, store Store, key, value string) error {
	current, err := store.Get(ctx, key)
	if err != nil {
		return err
	}

	if current != "" {
		return nil
	}

	return store.Set(ctx, key, value)
}

type LoggingFlag struct {
	store Store
	log   *slog.Logger
}

func NewLoggingFlag(store Store, log *slog.Logger) *LoggingFlag {
	return &LoggingFlag{
		store: store,
		log:   log.With(slog.String("item", "LoggingFlag")),
	}
}

// Enabled reads the flag from the store on every call. A store failure keeps
// logging on.
func (f *LoggingFlag) Enabled(ctx context.Context) bool {
	value, err := f.store.Get(ctx, KeyLogging)
	if err != nil {
		f.log.Warn("Cannot read logging flag", slog.Any("error", err))

		return true
	}

	return value == LoggingOn
}

func (f *LoggingFlag) Set(ctx context.Context, on bool) error {
	value := LoggingOff
	if on {
		value = LoggingOn
	}

	return f.store.Set(ctx, KeyLogging, value)
}
