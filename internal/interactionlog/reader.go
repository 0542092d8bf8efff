// ABOUTME: Read side of the interaction log for the logs command
// ABOUTME: Loads the most recent records back from whichever sink is configured
package interactionlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/harper/clara/internal/charm"
	"github.com/harper/clara/internal/config"
	"github.com/harper/clara/internal/models"
	"github.com/harper/clara/internal/storage/sqlite"
)

// ErrLoggingDisabled is returned when reading from the none sink
var ErrLoggingDisabled = errors.New("interaction logging is disabled")

// ReadJSONL returns up to limit records from a JSONL log, newest first.
// Malformed lines are skipped. A missing file yields no records.
func ReadJSONL(path string, limit int) ([]models.LogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []models.LogRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec models.LogRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return newestFirst(records, limit), nil
}

// keyReader is the subset of the charm client used to read records back
type keyReader interface {
	ListKeys(prefix string) ([]string, error)
	GetJSON(key string, v any) error
}

// ReadKV returns up to limit records stored under interaction: keys, newest first
func ReadKV(kv keyReader, limit int) ([]models.LogRecord, error) {
	keys, err := kv.ListKeys(charm.InteractionPrefix)
	if err != nil {
		return nil, err
	}
	// ulid keys sort by time
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	records := make([]models.LogRecord, 0, len(keys))
	for _, key := range keys {
		var rec models.LogRecord
		if err := kv.GetJSON(key, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Recent reads up to limit records from the sink selected by cfg, newest first
func Recent(cfg *config.Config, limit int) ([]models.LogRecord, error) {
	switch cfg.LogSink {
	case config.SinkNone:
		return nil, ErrLoggingDisabled
	case config.SinkJSONL:
		return ReadJSONL(cfg.LogPath, limit)
	case config.SinkSQLite:
		db, err := sqlite.Open(sqlitePath(cfg))
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		return sqlite.NewInteractionStore(db).Recent(limit)
	case config.SinkCharm:
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: true,
		})
		if err != nil {
			return nil, err
		}
		defer func() { _ = client.Close() }()
		return ReadKV(client, limit)
	default:
		return nil, fmt.Errorf("unknown log sink %q", cfg.LogSink)
	}
}

func newestFirst(records []models.LogRecord, limit int) []models.LogRecord {
	out := make([]models.LogRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
