// ABOUTME: Chat session controller: one turn = append user input, call model, style, store, log
// ABOUTME: Implements the Idle -> AwaitingReply -> Idle/Error state machine over a Conversation Store
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/clara/internal/conversation"
	"github.com/harper/clara/internal/interactionlog"
	"github.com/harper/clara/internal/llm"
	"github.com/harper/clara/internal/models"
	"github.com/harper/clara/internal/persona"
	"github.com/harper/clara/internal/styler"
)

// State is the session controller state
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting_reply"
	StateError         State = "error"
)

// Options configures a Session. Model is required; everything else but the
// sampling parameters has a default. Temperature is sent as given, zero included.
type Options struct {
	Persona     persona.Spec
	Model       llm.Model
	Styler      styler.Styler
	Recorder    interactionlog.Recorder
	Logger      *log.Logger
	Window      int
	Timeout     time.Duration
	Temperature float32
	TopP        float32
	MaxTokens   int
}

func (o Options) withDefaults() Options {
	if o.Persona.Prompt == "" {
		o.Persona = persona.Clara()
	}
	if o.Styler == nil {
		o.Styler = styler.NewStyler()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Recorder == nil {
		o.Recorder = interactionlog.New(nil, o.Logger)
	}
	if o.Window <= 0 {
		o.Window = conversation.DefaultWindow
	}
	return o
}

// TurnView is one rendered message
type TurnView struct {
	Role models.Role `json:"role"`
	Text string      `json:"text"`
}

// View is the UI-facing view model of a session
type View struct {
	SessionID string     `json:"session_id"`
	State     State      `json:"state"`
	Turns     []TurnView `json:"turns"`
	Error     string     `json:"error,omitempty"`
	ErrorKind Kind       `json:"error_kind,omitempty"`
}

// Pending reports whether the last user turn has no reply
func (v View) Pending() bool {
	return len(v.Turns) > 0 && v.Turns[len(v.Turns)-1].Role == models.RoleUser
}

// Session owns one conversation and drives the turn state machine.
// It is safe for concurrent use; the model call runs outside the lock.
type Session struct {
	id   string
	opts Options

	mu      sync.Mutex
	store   *conversation.Store
	state   State
	lastErr *Error
	// epoch increments on Clear so replies to pre-clear turns are dropped
	epoch uint64
}

// New creates a session seeded with the persona greeting
func New(opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		id:    uuid.New().String(),
		opts:  opts,
		store: conversation.NewStore(opts.Persona.SeedTurn()),
		state: StateIdle,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// State returns the current controller state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Turns returns a snapshot of the conversation
func (s *Session) Turns() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// View returns the current view model
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Submit runs one turn. Validation failures leave the session untouched; model
// failures leave the user turn in place without a reply and put the session in StateError.
// While that turn is unanswered Submit is rejected; Resend or Clear move on.
func (s *Session) Submit(ctx context.Context, text string) (View, error) {
	userText := strings.TrimSpace(text)
	if userText == "" {
		return s.View(), &Error{Kind: KindValidation, Err: models.ErrEmptyMessage}
	}

	s.mu.Lock()
	if err := s.checkIdleLocked(); err != nil {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, err
	}

	userTurn, err := models.NewTurn(models.RoleUser, userText)
	if err == nil {
		err = s.store.Append(userTurn)
	}
	if err != nil {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, &Error{Kind: KindValidation, Err: err}
	}

	return s.replyLocked(ctx, userText)
}

// Resend asks the model again for the unanswered user turn left by a failed call.
// It only runs when the user asks for it; the session never retries on its own.
func (s *Session) Resend(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.state == StateAwaitingReply {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, &Error{Kind: KindValidation, Err: ErrReplyPending}
	}
	last := s.store.Last()
	if last.Role != models.RoleUser {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, &Error{Kind: KindValidation, Err: ErrNothingToResend}
	}

	s.opts.Logger.Debug("resending unanswered turn", "session", s.id)
	return s.replyLocked(ctx, last.Text)
}

// checkIdleLocked rejects new input while the last user turn has no reply
func (s *Session) checkIdleLocked() error {
	if s.state == StateAwaitingReply {
		return &Error{Kind: KindValidation, Err: ErrReplyPending}
	}
	if s.store.Last().Role == models.RoleUser {
		return &Error{Kind: KindValidation, Err: ErrUnanswered}
	}
	return nil
}

// replyLocked is entered with s.mu held and the pending user turn stored last.
// It releases the lock around the model call and returns with it released.
func (s *Session) replyLocked(ctx context.Context, userText string) (View, error) {
	s.state = StateAwaitingReply
	s.lastErr = nil
	epoch := s.epoch
	req := s.buildRequestLocked()
	s.mu.Unlock()

	s.opts.Logger.Debug("requesting reply", "session", s.id, "model", s.opts.Model.ModelID())
	reply, callErr := s.generate(ctx, req)

	s.mu.Lock()
	if epoch != s.epoch {
		view := s.viewLocked()
		s.mu.Unlock()
		s.opts.Logger.Debug("discarding reply to cleared conversation", "session", s.id)
		return view, nil
	}

	if callErr == nil {
		assistantTurn := models.Turn{
			Role:      models.RoleAssistant,
			Text:      s.opts.Styler.Style(reply),
			Timestamp: time.Now().UTC(),
		}
		if err := s.store.Append(assistantTurn); err != nil {
			callErr = fmt.Errorf("store reply: %w", err)
		}
	}

	if callErr != nil {
		kind := KindRemoteCall
		if errors.Is(callErr, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		s.state = StateError
		s.lastErr = &Error{Kind: kind, Err: callErr}
		view := s.viewLocked()
		turnErr := s.lastErr
		s.mu.Unlock()
		s.opts.Logger.Warn("model call failed", "session", s.id, "kind", kind, "err", callErr)
		return view, turnErr
	}

	s.state = StateIdle
	view := s.viewLocked()
	s.mu.Unlock()

	// the log sees the raw reply, never the styled one
	s.opts.Recorder.Log(userText, reply, s.opts.Model.ModelID())
	return view, nil
}

// Clear resets the conversation to the seed greeting. It is legal in any state.
func (s *Session) Clear() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Reset()
	s.state = StateIdle
	s.lastErr = nil
	s.epoch++
	return s.viewLocked()
}

func (s *Session) generate(ctx context.Context, req llm.Request) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	return s.opts.Model.Generate(ctx, req)
}

// buildRequestLocked frames the windowed transcript, which already ends with the new user turn
func (s *Session) buildRequestLocked() llm.Request {
	window := conversation.Window(s.store.Snapshot(), s.opts.Window)
	return llm.Request{
		System:      s.opts.Persona.Prompt,
		Prompt:      s.opts.Persona.Frame(conversation.Transcript(window)),
		Temperature: s.opts.Temperature,
		TopP:        s.opts.TopP,
		MaxTokens:   s.opts.MaxTokens,
	}
}

func (s *Session) viewLocked() View {
	turns := s.store.Snapshot()
	view := View{
		SessionID: s.id,
		State:     s.state,
		Turns:     make([]TurnView, len(turns)),
	}
	for i, t := range turns {
		view.Turns[i] = TurnView{Role: t.Role, Text: t.Text}
	}
	if s.lastErr != nil {
		view.Error = s.lastErr.Error()
		view.ErrorKind = s.lastErr.Kind
	}
	return view
}
