// ABOUTME: Error taxonomy for chat turns: validation, remote call and timeout
// ABOUTME: All kinds are recoverable and surface to the UI as a turn-level indicator
package session

import (
	"errors"
	"fmt"
)

// Kind classifies a turn failure
type Kind string

const (
	KindValidation Kind = "validation"
	KindRemoteCall Kind = "remote_call"
	KindTimeout    Kind = "timeout"
)

var (
	// ErrReplyPending is returned when a message is submitted while a reply is outstanding
	ErrReplyPending = errors.New("a reply is still pending")
	// ErrUnanswered is returned when a message is submitted after a failed turn;
	// the failed turn must be resent or the conversation cleared first
	ErrUnanswered = errors.New("the previous message has no reply yet; resend it or clear the conversation")
	// ErrNothingToResend is returned by Resend when the last turn already has a reply
	ErrNothingToResend = errors.New("no unanswered message to resend")
	// ErrSessionNotFound is returned by Manager lookups for unknown ids
	ErrSessionNotFound = errors.New("session not found")
)

// Error is a turn-level failure
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		return fmt.Sprintf("invalid message: %v", e.Err)
	case KindTimeout:
		return fmt.Sprintf("model timed out: %v", e.Err)
	default:
		return fmt.Sprintf("model call failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not a session error
func KindOf(err error) Kind {
	var sessErr *Error
	if errors.As(err, &sessErr) {
		return sessErr.Kind
	}
	return ""
}

// IsValidation reports whether err rejected the input without any state change
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
