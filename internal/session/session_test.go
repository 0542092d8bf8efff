// ABOUTME: Tests for the session state machine using fake models, stylers and sinks
// ABOUTME: Covers turn bookkeeping, validation, remote failures, timeouts and clearing
package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/clara/internal/interactionlog"
	"github.com/harper/clara/internal/llm"
	"github.com/harper/clara/internal/models"
	"github.com/harper/clara/internal/persona"
	"github.com/harper/clara/internal/styler"
)

type fakeModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.Request
}

func (m *fakeModel) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *fakeModel) ModelID() string { return "fake-model" }

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// gatedModel blocks until release is closed or ctx ends
type gatedModel struct {
	started chan struct{}
	release chan struct{}
}

func newGatedModel() *gatedModel {
	return &gatedModel{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (m *gatedModel) Generate(ctx context.Context, _ llm.Request) (string, error) {
	m.started <- struct{}{}
	select {
	case <-m.release:
		return "late reply", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *gatedModel) ModelID() string { return "gated-model" }

type captureRecorder struct {
	mu    sync.Mutex
	calls [][3]string
}

func (r *captureRecorder) Log(userText, aiText, modelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, [3]string{userText, aiText, modelID})
}

type brokenSink struct{}

func (brokenSink) Write(models.LogRecord) error { return errors.New("read-only file system") }
func (brokenSink) Close() error                 { return nil }

// bothSource forces an opener and an emoji, always picking the first entry
type bothSource struct{}

func (bothSource) Chance(float64) bool { return true }
func (bothSource) Choose(int) int      { return 0 }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestSession(model llm.Model, rec interactionlog.Recorder) *Session {
	return New(Options{
		Model:    model,
		Styler:   styler.Plain{},
		Recorder: rec,
		Logger:   quietLogger(),
	})
}

func TestNew_SeededWithGreeting(t *testing.T) {
	s := newTestSession(&fakeModel{}, nil)

	turns := s.Turns()
	if len(turns) != 1 {
		t.Fatalf("len(turns) = %d, want 1", len(turns))
	}
	if turns[0].Role != models.RoleAssistant || turns[0].Text != persona.Greeting {
		t.Errorf("seed = %+v, want assistant greeting", turns[0])
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %s, want idle", s.State())
	}
	if s.ID() == "" {
		t.Error("ID() should not be empty")
	}
}

func TestSubmit_HappyPath(t *testing.T) {
	model := &fakeModel{reply: "Try resting and drink water."}
	rec := &captureRecorder{}
	s := New(Options{
		Model:    model,
		Styler:   styler.NewStylerWithSource(bothSource{}),
		Recorder: rec,
		Logger:   quietLogger(),
	})

	view, err := s.Submit(context.Background(), "  I have a headache  ")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	want := []TurnView{
		{Role: models.RoleAssistant, Text: persona.Greeting},
		{Role: models.RoleUser, Text: "I have a headache"},
		{Role: models.RoleAssistant, Text: "Hmm Try resting and drink water. 💊"},
	}
	if len(view.Turns) != len(want) {
		t.Fatalf("len(view.Turns) = %d, want %d", len(view.Turns), len(want))
	}
	for i := range want {
		if view.Turns[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, view.Turns[i], want[i])
		}
	}
	if view.State != StateIdle {
		t.Errorf("State = %s, want idle", view.State)
	}

	// the log sees the raw reply
	if len(rec.calls) != 1 {
		t.Fatalf("recorder calls = %d, want 1", len(rec.calls))
	}
	if rec.calls[0] != [3]string{"I have a headache", "Try resting and drink water.", "fake-model"} {
		t.Errorf("recorded %v", rec.calls[0])
	}
}

func TestSubmit_RequestCarriesPersonaAndTranscript(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	s := newTestSession(model, nil)

	if _, err := s.Submit(context.Background(), "I have a headache"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	req := model.requests[0]
	if req.System != persona.Prompt {
		t.Error("request should carry the persona prompt as system text")
	}
	if !strings.HasPrefix(req.Prompt, "Chat history:\n") || !strings.HasSuffix(req.Prompt, "\n\nYour response:") {
		t.Errorf("prompt not framed: %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "User: I have a headache") {
		t.Errorf("prompt missing latest user turn: %q", req.Prompt)
	}
	if req.Temperature != llm.DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", req.Temperature, llm.DefaultTemperature)
	}
}

func TestSubmit_WindowLimitsTranscript(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	s := New(Options{Model: model, Styler: styler.Plain{}, Logger: quietLogger(), Window: 2})

	for _, msg := range []string{"first", "second", "third"} {
		if _, err := s.Submit(context.Background(), msg); err != nil {
			t.Fatalf("Submit(%q) error = %v", msg, err)
		}
	}

	last := model.requests[len(model.requests)-1].Prompt
	if strings.Contains(last, "second") || strings.Contains(last, persona.Greeting) {
		t.Errorf("prompt should hold only the last 2 turns: %q", last)
	}
	if !strings.Contains(last, "Assistant: ok\nUser: third") {
		t.Errorf("prompt = %q, want last assistant reply and new user turn", last)
	}
}

func TestSubmit_LengthInvariant(t *testing.T) {
	s := newTestSession(&fakeModel{reply: "noted"}, nil)

	for k := 1; k <= 5; k++ {
		view, err := s.Submit(context.Background(), "message")
		if err != nil {
			t.Fatalf("Submit() #%d error = %v", k, err)
		}
		if got, want := len(view.Turns), 1+2*k; got != want {
			t.Errorf("after %d exchanges len = %d, want %d", k, got, want)
		}
	}
}

func TestSubmit_EmptyInput(t *testing.T) {
	model := &fakeModel{reply: "unused"}
	s := newTestSession(model, nil)

	for _, input := range []string{"", "   ", "\n\t"} {
		view, err := s.Submit(context.Background(), input)
		if !IsValidation(err) {
			t.Errorf("Submit(%q) error = %v, want validation error", input, err)
		}
		if !errors.Is(err, models.ErrEmptyMessage) {
			t.Errorf("Submit(%q) error should wrap ErrEmptyMessage", input)
		}
		if len(view.Turns) != 1 {
			t.Errorf("Submit(%q) changed conversation length to %d", input, len(view.Turns))
		}
	}
	if model.calls() != 0 {
		t.Errorf("model called %d times for empty input", model.calls())
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %s, want idle", s.State())
	}
}

func TestSubmit_RemoteFailure(t *testing.T) {
	rec := &captureRecorder{}
	s := newTestSession(&fakeModel{err: errors.New("quota exceeded")}, rec)

	view, err := s.Submit(context.Background(), "text")
	if err == nil {
		t.Fatal("Submit() should fail when the model fails")
	}
	if KindOf(err) != KindRemoteCall {
		t.Errorf("KindOf(err) = %q, want remote_call", KindOf(err))
	}

	if len(view.Turns) != 2 || view.Turns[1] != (TurnView{Role: models.RoleUser, Text: "text"}) {
		t.Errorf("turns = %+v, want seed plus pending user turn", view.Turns)
	}
	if view.State != StateError || view.Error == "" || view.ErrorKind != KindRemoteCall {
		t.Errorf("view = %+v, want error indicator", view)
	}
	if !view.Pending() {
		t.Error("view should report the unanswered user turn as pending")
	}
	if len(rec.calls) != 0 {
		t.Error("failed turns must not be logged")
	}
}

func countRoles(turns []TurnView) (users, assistants int) {
	for _, t := range turns {
		if t.Role == models.RoleUser {
			users++
		} else {
			assistants++
		}
	}
	return users, assistants
}

func TestSubmit_RepeatedFailuresKeepOnePendingTurn(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	s := newTestSession(model, nil)

	var view View
	var err error
	for _, text := range []string{"one", "two", "three"} {
		view, err = s.Submit(context.Background(), text)
		if err == nil {
			t.Fatalf("Submit(%q) should fail", text)
		}
	}

	if !errors.Is(err, ErrUnanswered) || !IsValidation(err) {
		t.Errorf("Submit() after failure error = %v, want validation ErrUnanswered", err)
	}
	users, assistants := countRoles(view.Turns)
	if users-assistants > 1 {
		t.Errorf("users=%d assistants=%d, at most one unanswered user turn allowed", users, assistants)
	}
	if len(view.Turns) != 2 || view.Turns[1].Text != "one" {
		t.Errorf("turns = %+v, want seed plus the first failed turn", view.Turns)
	}
	if model.calls() != 1 {
		t.Errorf("model calls = %d, want 1", model.calls())
	}
	if view.State != StateError {
		t.Errorf("State = %s, want error to stay visible", view.State)
	}
}

func TestResend_RecoversFromError(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	rec := &captureRecorder{}
	s := newTestSession(model, rec)

	if _, err := s.Submit(context.Background(), "first"); err == nil {
		t.Fatal("expected failure")
	}

	model.mu.Lock()
	model.err = nil
	model.reply = "better now"
	model.mu.Unlock()

	view, err := s.Resend(context.Background())
	if err != nil {
		t.Fatalf("Resend() error = %v", err)
	}
	if view.State != StateIdle || view.Error != "" {
		t.Errorf("view = %+v, want idle without error", view)
	}
	// seed, resent user turn, assistant
	if len(view.Turns) != 3 || view.Turns[2].Text != "better now" {
		t.Errorf("turns = %+v, want seed, first, reply", view.Turns)
	}
	if len(rec.calls) != 1 || rec.calls[0][0] != "first" {
		t.Errorf("recorder calls = %v, want the resent user text", rec.calls)
	}

	if _, err := s.Submit(context.Background(), "second"); err != nil {
		t.Errorf("Submit() after resend = %v", err)
	}
}

func TestResend_NothingPending(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	s := newTestSession(model, nil)

	_, err := s.Resend(context.Background())
	if !errors.Is(err, ErrNothingToResend) || !IsValidation(err) {
		t.Errorf("Resend() error = %v, want validation ErrNothingToResend", err)
	}
	if model.calls() != 0 {
		t.Errorf("model calls = %d, want 0", model.calls())
	}
}

func TestSubmit_ZeroTemperatureReachesRequest(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	s := New(Options{Model: model, Styler: styler.Plain{}, Logger: quietLogger(), Temperature: 0})

	if _, err := s.Submit(context.Background(), "hi"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got := model.requests[0].Temperature; got != 0 {
		t.Errorf("request temperature = %v, want 0", got)
	}
}

type blankStyler struct{}

func (blankStyler) Style(string) string { return "" }

func TestSubmit_UnstorableReplyIsTurnError(t *testing.T) {
	rec := &captureRecorder{}
	s := New(Options{Model: &fakeModel{reply: "ok"}, Styler: blankStyler{}, Recorder: rec, Logger: quietLogger()})

	view, err := s.Submit(context.Background(), "hi")
	if KindOf(err) != KindRemoteCall {
		t.Fatalf("Submit() error = %v, want remote_call", err)
	}
	if len(view.Turns) != 2 || !view.Pending() {
		t.Errorf("turns = %+v, want the user turn left pending", view.Turns)
	}
	if len(rec.calls) != 0 {
		t.Error("a reply that was not stored must not be logged")
	}
}

func TestSubmit_Timeout(t *testing.T) {
	model := newGatedModel()
	s := New(Options{Model: model, Styler: styler.Plain{}, Logger: quietLogger(), Timeout: 20 * time.Millisecond})

	view, err := s.Submit(context.Background(), "are you there?")
	if KindOf(err) != KindTimeout {
		t.Fatalf("KindOf(err) = %q, want timeout (err = %v)", KindOf(err), err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("timeout error should wrap context.DeadlineExceeded")
	}
	if view.State != StateError || len(view.Turns) != 2 {
		t.Errorf("view = %+v, want error state with pending user turn", view)
	}
}

func TestSubmit_LoggerFailureDoesNotBreakTurn(t *testing.T) {
	recorder := interactionlog.New(brokenSink{}, quietLogger())
	s := newTestSession(&fakeModel{reply: "Rest well."}, recorder)

	view, err := s.Submit(context.Background(), "I feel tired")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(view.Turns) != 3 || view.Turns[2].Text != "Rest well." {
		t.Errorf("turns = %+v, want completed exchange", view.Turns)
	}
}

func TestSubmit_RejectsWhileAwaitingReply(t *testing.T) {
	model := newGatedModel()
	s := newTestSession(model, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "first")
		done <- err
	}()
	<-model.started

	view := s.View()
	if view.State != StateAwaitingReply {
		t.Errorf("State = %s, want awaiting_reply", view.State)
	}
	if len(view.Turns) != 2 {
		t.Errorf("pending len = %d, want 2", len(view.Turns))
	}

	_, err := s.Submit(context.Background(), "second")
	if !errors.Is(err, ErrReplyPending) || !IsValidation(err) {
		t.Errorf("second Submit() error = %v, want ErrReplyPending", err)
	}

	close(model.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if got := len(s.Turns()); got != 3 {
		t.Errorf("len(turns) = %d, want 3", got)
	}
}

func TestClear(t *testing.T) {
	s := newTestSession(&fakeModel{reply: "sure"}, nil)

	for i := 0; i < 3; i++ {
		if _, err := s.Submit(context.Background(), "hello"); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	view := s.Clear()
	if len(view.Turns) != 1 || view.Turns[0].Text != persona.Greeting {
		t.Errorf("Clear() turns = %+v, want seed only", view.Turns)
	}
	if view.State != StateIdle {
		t.Errorf("State = %s, want idle", view.State)
	}
}

func TestClear_FromErrorState(t *testing.T) {
	s := newTestSession(&fakeModel{err: errors.New("down")}, nil)
	_, _ = s.Submit(context.Background(), "hello")

	view := s.Clear()
	if len(view.Turns) != 1 || view.State != StateIdle || view.Error != "" {
		t.Errorf("Clear() view = %+v, want clean seed state", view)
	}
}

func TestClear_DiscardsLateReply(t *testing.T) {
	model := newGatedModel()
	rec := &captureRecorder{}
	s := newTestSession(model, rec)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "before clear")
		done <- err
	}()
	<-model.started

	s.Clear()
	close(model.release)
	if err := <-done; err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	turns := s.Turns()
	if len(turns) != 1 {
		t.Errorf("late reply should be discarded, len(turns) = %d", len(turns))
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %s, want idle", s.State())
	}
	if len(rec.calls) != 0 {
		t.Error("discarded reply must not be logged")
	}
}

func TestError_Messages(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindValidation, "invalid message: x"},
		{KindRemoteCall, "model call failed: x"},
		{KindTimeout, "model timed out: x"},
	}

	for _, tt := range tests {
		err := &Error{Kind: tt.kind, Err: errors.New("x")}
		if err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
		}
	}

	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf(plain error) should be empty")
	}
}
