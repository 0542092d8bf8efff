// ABOUTME: LogRecord is the anonymized metadata written for each completed exchange
// ABOUTME: Hashes the user text so no message content reaches the log sink
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
	"unicode/utf8"
)

// UserHashLength is the number of hex characters kept from the SHA-256 digest.
// Twelve characters is not collision-free; the hash is a coarse grouping key only.
const UserHashLength = 12

// LogRecord is one line of the interaction log
type LogRecord struct {
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	UserHash   string    `json:"user_hash" yaml:"user_hash"`
	UserLength int       `json:"user_length" yaml:"user_length"`
	AILength   int       `json:"ai_length" yaml:"ai_length"`
	Model      string    `json:"model" yaml:"model"`
}

// NewLogRecord derives a LogRecord from a user message and the raw model reply
func NewLogRecord(userText, aiText, modelID string, at time.Time) LogRecord {
	return LogRecord{
		Timestamp:  at,
		UserHash:   HashUserText(userText),
		UserLength: utf8.RuneCountInString(userText),
		AILength:   utf8.RuneCountInString(aiText),
		Model:      modelID,
	}
}

// HashUserText returns the truncated hex SHA-256 fingerprint of text
func HashUserText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:UserHashLength]
}
