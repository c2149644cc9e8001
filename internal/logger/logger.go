// Package logger is a thin action-oriented wrapper over zerolog: every
// entry names the service and the action it records, plus free-form fields.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

type Logger struct {
	z zerolog.Logger
}

func New(service string) *Logger {
	z := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", service).
		Logger()
	return &Logger{z: z}
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.z.Info().Fields(fields).Str("action", action).Msg(action)
}

func (l *Logger) Debug(action string, fields map[string]any) {
	l.z.Debug().Fields(fields).Str("action", action).Msg(action)
}

func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.z.Error().Err(err).Fields(fields).Str("action", action).Msg(action)
}
