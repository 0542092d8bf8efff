// ABOUTME: In-memory conversation store: ordered, append-only sequence of turns
// ABOUTME: Single source of truth for what has been said in one session
package conversation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harper/clara/internal/models"
)

// ErrBlankReply is returned when an assistant turn has no visible text
var ErrBlankReply = errors.New("assistant turn has no text")

// ErrUnansweredTurn is returned when a user turn would follow another unanswered user turn
var ErrUnansweredTurn = errors.New("previous user turn has no reply")

// Store holds the ordered turns of one conversation. The seed turn is always at index 0.
// Store is not safe for concurrent use; the owning session serializes access.
type Store struct {
	seed  models.Turn
	turns []models.Turn
}

// NewStore creates a store containing only the seed turn
func NewStore(seed models.Turn) *Store {
	s := &Store{seed: seed}
	s.Reset()
	return s
}

// Append adds a turn to the end of the conversation. At most one user turn
// may be waiting for a reply at any time.
func (s *Store) Append(turn models.Turn) error {
	if _, err := models.NewTurn(turn.Role, turn.Text); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	if turn.Role == models.RoleAssistant && strings.TrimSpace(turn.Text) == "" {
		return fmt.Errorf("append turn: %w", ErrBlankReply)
	}
	if turn.Role == models.RoleUser && s.Last().Role == models.RoleUser {
		return fmt.Errorf("append turn: %w", ErrUnansweredTurn)
	}
	s.turns = append(s.turns, turn)
	return nil
}

// Reset replaces the contents with exactly the seed turn
func (s *Store) Reset() {
	s.turns = []models.Turn{s.seed}
}

// Snapshot returns a copy of the full ordered sequence
func (s *Store) Snapshot() []models.Turn {
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of turns, seed included
func (s *Store) Len() int {
	return len(s.turns)
}

// Last returns the most recent turn
func (s *Store) Last() models.Turn {
	return s.turns[len(s.turns)-1]
}
