// ABOUTME: Tests for shared utility functions used by CLI commands
// ABOUTME: Verifies truncate, formatTime and validation helpers

package commands

import (
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"very short maxLen", "hello", 2, "he"},
		{"empty string", "", 10, ""},
		{"unicode truncated with ellipsis", "你好世界你好世界", 5, "你好..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		input    time.Time
		contains string
	}{
		{"just now (seconds ago)", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "h ago"},
		{"days ago", now.Add(-2 * 24 * time.Hour), "d ago"},
		{"weeks ago (shows date)", now.Add(-14 * 24 * time.Hour), "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTime(tt.input)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("formatTime() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestValidatePositiveInt(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{1, false},
		{20, false},
		{0, true},
		{-5, true},
	}

	for _, tt := range tests {
		err := validatePositiveInt(tt.n, "limit")
		if (err != nil) != tt.wantErr {
			t.Errorf("validatePositiveInt(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}
