// ABOUTME: Turn represents a single message in a Clara conversation
// ABOUTME: Core data structure shared by the conversation store, session and UI
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role identifies who authored a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrEmptyMessage is returned when a user turn has no text after trimming
var ErrEmptyMessage = errors.New("user message cannot be empty")

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Title returns the capitalized role name used in transcripts ("User", "Assistant")
func (r Role) Title() string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Turn is one message exchanged in the conversation. Turns are immutable once created.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewTurn creates a new Turn with validation
func NewTurn(role Role, text string) (Turn, error) {
	if !role.Valid() {
		return Turn{}, fmt.Errorf("unknown role %q", role)
	}
	if role == RoleUser && strings.TrimSpace(text) == "" {
		return Turn{}, ErrEmptyMessage
	}
	return Turn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}, nil
}

// IsUser reports whether the turn was authored by the user
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}
