// ABOUTME: Line-delimited JSON file sink for interaction records
// ABOUTME: Opens the file in append mode and serializes writes with a mutex
package interactionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harper/clara/internal/models"
)

// JSONLSink appends one JSON object per line to a file
type JSONLSink struct {
	path string
	mu   sync.Mutex
	file *os.File
}

// OpenJSONL opens (creating if needed) the log file at path for appending
func OpenJSONL(path string) (*JSONLSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &JSONLSink{path: path, file: f}, nil
}

// Path returns the log file path
func (s *JSONLSink) Path() string {
	return s.path
}

// Write appends rec as a single JSON line
func (s *JSONLSink) Write(rec models.LogRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal log record: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("log file %s is closed", s.path)
	}
	if _, err := s.file.Write(data); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}
	return nil
}

// Close closes the log file
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
