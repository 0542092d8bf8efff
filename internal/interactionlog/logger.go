// ABOUTME: Best-effort interaction logger writing anonymized LogRecords to a sink
// ABOUTME: Sink failures are reported to the app log and never returned to callers
package interactionlog

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/clara/internal/models"
)

// Sink is an append-only destination for LogRecords
type Sink interface {
	Write(rec models.LogRecord) error
	Close() error
}

// Recorder is what the session depends on
type Recorder interface {
	Log(userText, aiText, modelID string)
}

// Logger derives LogRecords and hands them to a Sink
type Logger struct {
	sink   Sink
	logger *log.Logger
	now    func() time.Time
}

// New creates a Logger. A nil sink disables logging; a nil logger uses log.Default().
func New(sink Sink, logger *log.Logger) *Logger {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Logger{
		sink:   sink,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Log records one exchange. aiText must be the raw, unstyled reply.
func (l *Logger) Log(userText, aiText, modelID string) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("interaction log sink panicked", "panic", fmt.Sprint(r))
		}
	}()

	rec := models.NewLogRecord(userText, aiText, modelID, l.now())
	if err := l.sink.Write(rec); err != nil {
		l.logger.Warn("interaction log write failed", "err", err)
		return
	}
	l.logger.Debug("interaction logged", "user_hash", rec.UserHash, "ai_length", rec.AILength)
}

// Close closes the underlying sink
func (l *Logger) Close() error {
	return l.sink.Close()
}

// NopSink discards every record
type NopSink struct{}

// Write discards rec
func (NopSink) Write(models.LogRecord) error { return nil }

// Close does nothing
func (NopSink) Close() error { return nil }
