// ABOUTME: SQLite and Charm KV sinks plus the config-driven sink factory
// ABOUTME: Adapts the storage layers to the Sink interface used by Logger
package interactionlog

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/harper/clara/internal/charm"
	"github.com/harper/clara/internal/config"
	"github.com/harper/clara/internal/models"
	"github.com/harper/clara/internal/storage/sqlite"
)

// SQLiteSink writes records to the interactions table
type SQLiteSink struct {
	db    *sqlite.DB
	store *sqlite.InteractionStore
}

// OpenSQLite opens (creating if needed) the interaction database at path
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteSink(db), nil
}

// NewSQLiteSink wraps an already open database
func NewSQLiteSink(db *sqlite.DB) *SQLiteSink {
	return &SQLiteSink{db: db, store: sqlite.NewInteractionStore(db)}
}

// Write inserts rec
func (s *SQLiteSink) Write(rec models.LogRecord) error {
	_, err := s.store.Save(rec)
	return err
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// jsonKV is the subset of the charm client used by CharmSink
type jsonKV interface {
	SetJSON(key string, value any) error
	Close() error
}

// CharmSink stores records in Charm KV under interaction:<ulid>
type CharmSink struct {
	kv      jsonKV
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewCharmSink wraps a charm client
func NewCharmSink(kv jsonKV) *CharmSink {
	return &CharmSink{kv: kv, entropy: ulid.Monotonic(rand.Reader, 0)}
}

// Write stores rec as JSON
func (s *CharmSink) Write(rec models.LogRecord) error {
	s.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(rec.Timestamp), s.entropy)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("generate id: %w", err)
	}
	return s.kv.SetJSON(charm.InteractionKey(id.String()), rec)
}

// Close closes the KV store
func (s *CharmSink) Close() error {
	return s.kv.Close()
}

// OpenSink builds the sink selected by cfg.LogSink
func OpenSink(cfg *config.Config) (Sink, error) {
	switch cfg.LogSink {
	case config.SinkNone:
		return NopSink{}, nil
	case config.SinkJSONL:
		return OpenJSONL(cfg.LogPath)
	case config.SinkSQLite:
		return OpenSQLite(sqlitePath(cfg))
	case config.SinkCharm:
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: true,
		})
		if err != nil {
			return nil, err
		}
		return NewCharmSink(client), nil
	default:
		return nil, fmt.Errorf("unknown log sink %q", cfg.LogSink)
	}
}

// sqlitePath keeps the default JSONL file name from being opened as a database
func sqlitePath(cfg *config.Config) string {
	if cfg.LogPath == "" || cfg.LogPath == config.DefaultLogPath {
		return sqlite.DefaultDBPath()
	}
	return cfg.LogPath
}
