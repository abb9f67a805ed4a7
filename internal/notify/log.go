// Package notify provides schedule.Notifier sinks.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

// Log writes every registration to a logger. It is the dry-run sink.
type Log struct {
	log zerolog.Logger
}

// NewLog returns a sink that logs at info level.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) RemoveAll(ctx context.Context) error {
	l.log.Info().Msg("removing all pending notifications")
	return nil
}

func (l *Log) Add(ctx context.Context, t schedule.Trigger) error {
	l.log.Info().
		Str("identifier", t.Identifier).
		Str("at", t.Clock()).
		Bool("repeats", t.Repeats).
		Str("title", t.Title).
		Str("sound", t.SoundName()).
		Msg("notification scheduled")
	return nil
}
