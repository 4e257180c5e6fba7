package middleware

import (
	"io"

	charm "github.com/charmbracelet/log"
)

// CharmLogger adapts a charmbracelet/log logger to the Logger interface.
type CharmLogger struct {
	logger *charm.Logger
}

// NewCharmLogger wraps an existing charm logger.
func NewCharmLogger(logger *charm.Logger) *CharmLogger {
	return &CharmLogger{logger: logger}
}

// NewCharmLoggerTo creates a charm-backed logger writing to w with the
// given prefix, timestamps enabled.
func NewCharmLoggerTo(w io.Writer, prefix string) *CharmLogger {
	logger := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	return &CharmLogger{logger: logger}
}

func (l *CharmLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, keyvals(fields)...)
}

func (l *CharmLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, keyvals(fields)...)
}

func (l *CharmLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, keyvals(fields)...)
}

func (l *CharmLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, keyvals(fields)...)
}

func keyvals(fields []Field) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}
