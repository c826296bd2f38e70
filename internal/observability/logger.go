package observability

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog emitting one JSON object per line.
type Logger struct {
	base zerolog.Logger
}

func NewLogger() *Logger {
	return &Logger{base: zerolog.New(os.Stdout).With().Timestamp().Logger()}
}

func (l *Logger) Info(message string, fields map[string]any) {
	l.base.Info().Fields(fields).Msg(message)
}

func (l *Logger) Error(message string, fields map[string]any) {
	l.base.Error().Fields(fields).Msg(message)
}
