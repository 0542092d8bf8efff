// ABOUTME: Interaction record storage operations for SQLite
// ABOUTME: Append-only inserts keyed by ULID, plus read helpers for external tooling and tests
package sqlite

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harper/clara/internal/models"
)

// InteractionStore handles interaction record persistence
type InteractionStore struct {
	db      *DB
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewInteractionStore creates a new InteractionStore
func NewInteractionStore(db *DB) *InteractionStore {
	return &InteractionStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Save appends a record and returns its generated ID
func (s *InteractionStore) Save(rec models.LogRecord) (string, error) {
	s.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(rec.Timestamp), s.entropy)
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO interactions (id, logged_at, user_hash, user_length, ai_length, model)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id.String(), rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.UserHash,
		rec.UserLength, rec.AILength, rec.Model)
	if err != nil {
		return "", fmt.Errorf("insert interaction: %w", err)
	}

	return id.String(), nil
}

// Recent returns up to limit records, newest first. A limit <= 0 returns all of them.
func (s *InteractionStore) Recent(limit int) ([]models.LogRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT logged_at, user_hash, user_length, ai_length, model
		FROM interactions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []models.LogRecord
	for rows.Next() {
		var (
			rec      models.LogRecord
			loggedAt string
		)
		if err := rows.Scan(&loggedAt, &rec.UserHash, &rec.UserLength, &rec.AILength, &rec.Model); err != nil {
			return nil, err
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, loggedAt); err != nil {
			return nil, fmt.Errorf("parse logged_at %q: %w", loggedAt, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns the number of stored records
func (s *InteractionStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&n)
	return n, err
}
