// ABOUTME: Tests for MCP tool handlers driving sessions through a fake model
// ABOUTME: Verifies session lifecycle, chat turns and argument validation
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/clara/internal/llm"
	"github.com/harper/clara/internal/session"
	"github.com/harper/clara/internal/styler"
)

type stubModel struct {
	reply string
	err   error
}

func (m stubModel) Generate(context.Context, llm.Request) (string, error) {
	return m.reply, m.err
}

func (stubModel) ModelID() string { return "stub" }

func newHandlers(model llm.Model) *Handlers {
	logger := log.New(io.Discard)
	manager := session.NewManager(session.Options{
		Model:  model,
		Styler: styler.Plain{},
		Logger: logger,
	})
	return NewHandlers(manager, logger)
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func decode(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	return out
}

func startSession(t *testing.T, h *Handlers) string {
	t.Helper()
	result, err := h.StartSession(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	id, _ := decode(t, result)["session_id"].(string)
	if id == "" {
		t.Fatal("StartSession() returned no session_id")
	}
	return id
}

func TestHandlers_ChatFlow(t *testing.T) {
	h := newHandlers(stubModel{reply: "Drink some water."})
	id := startSession(t, h)

	result, err := h.SendMessage(context.Background(), callRequest(map[string]interface{}{
		"session_id": id,
		"message":    "I have a headache",
	}))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	out := decode(t, result)
	if out["reply"] != "Drink some water." {
		t.Errorf("reply = %v, want stub reply", out["reply"])
	}
	if turns, _ := out["conversation"].([]interface{}); len(turns) != 3 {
		t.Errorf("conversation has %d turns, want 3", len(turns))
	}

	result, _ = h.ClearConversation(context.Background(), callRequest(map[string]interface{}{"session_id": id}))
	if turns, _ := decode(t, result)["turns"].([]interface{}); len(turns) != 1 {
		t.Errorf("cleared conversation has %d turns, want 1", len(turns))
	}

	result, _ = h.EndSession(context.Background(), callRequest(map[string]interface{}{"session_id": id}))
	if decode(t, result)["ended"] != true {
		t.Error("EndSession() should report ended")
	}

	result, _ = h.GetConversation(context.Background(), callRequest(map[string]interface{}{"session_id": id}))
	if !result.IsError {
		t.Error("GetConversation() after end should be a tool error")
	}
}

func TestHandlers_RemoteFailureReportedInResult(t *testing.T) {
	h := newHandlers(stubModel{err: errors.New("quota exceeded")})
	id := startSession(t, h)

	result, err := h.SendMessage(context.Background(), callRequest(map[string]interface{}{
		"session_id": id,
		"message":    "hello",
	}))
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	out := decode(t, result)
	if out["error_kind"] != string(session.KindRemoteCall) {
		t.Errorf("error_kind = %v, want remote_call", out["error_kind"])
	}
	if _, ok := out["reply"]; ok {
		t.Error("failed turn should not carry a reply")
	}
}

type switchModel struct {
	mu  sync.Mutex
	err error
}

func (m *switchModel) Generate(context.Context, llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return "Feeling better?", nil
}

func (*switchModel) ModelID() string { return "switch" }

func TestHandlers_ResendAfterFailure(t *testing.T) {
	model := &switchModel{err: errors.New("backend down")}
	h := newHandlers(model)
	id := startSession(t, h)

	send := func(msg string) *mcp.CallToolResult {
		result, err := h.SendMessage(context.Background(), callRequest(map[string]interface{}{"session_id": id, "message": msg}))
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		return result
	}

	decode(t, send("I feel dizzy"))
	if result := send("hello?"); !result.IsError {
		t.Error("a new message after a failed turn should be refused")
	}

	model.mu.Lock()
	model.err = nil
	model.mu.Unlock()

	result, err := h.ResendMessage(context.Background(), callRequest(map[string]interface{}{"session_id": id}))
	if err != nil {
		t.Fatalf("ResendMessage() error = %v", err)
	}
	out := decode(t, result)
	if out["reply"] != "Feeling better?" {
		t.Errorf("reply = %v, want model reply", out["reply"])
	}
	if turns, _ := out["conversation"].([]interface{}); len(turns) != 3 {
		t.Errorf("conversation has %d turns, want 3", len(turns))
	}

	result, _ = h.ResendMessage(context.Background(), callRequest(map[string]interface{}{"session_id": id}))
	if !result.IsError {
		t.Error("resend with nothing pending should be a tool error")
	}
}

type gatedModel struct {
	started chan struct{}
	release chan struct{}
}

func (m *gatedModel) Generate(ctx context.Context, _ llm.Request) (string, error) {
	m.started <- struct{}{}
	<-m.release
	return "too late", nil
}

func (*gatedModel) ModelID() string { return "gated" }

func TestHandlers_ClearDuringSendHasNoReply(t *testing.T) {
	model := &gatedModel{started: make(chan struct{}, 1), release: make(chan struct{})}
	h := newHandlers(model)
	id := startSession(t, h)

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		result, _ := h.SendMessage(context.Background(), callRequest(map[string]interface{}{"session_id": id, "message": "hi"}))
		done <- result
	}()

	<-model.started
	if _, err := h.ClearConversation(context.Background(), callRequest(map[string]interface{}{"session_id": id})); err != nil {
		t.Fatalf("ClearConversation() error = %v", err)
	}
	close(model.release)

	out := decode(t, <-done)
	if reply, ok := out["reply"]; ok {
		t.Errorf("reply = %v, want none after clear", reply)
	}
	if turns, _ := out["conversation"].([]interface{}); len(turns) != 1 {
		t.Errorf("conversation has %d turns, want only the greeting", len(turns))
	}
}

func TestHandlers_Validation(t *testing.T) {
	h := newHandlers(stubModel{reply: "ok"})
	id := startSession(t, h)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing session", map[string]interface{}{"message": "hi"}},
		{"unknown session", map[string]interface{}{"session_id": "nope", "message": "hi"}},
		{"missing message", map[string]interface{}{"session_id": id}},
		{"blank message", map[string]interface{}{"session_id": id, "message": "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.SendMessage(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("SendMessage() error = %v", err)
			}
			if !result.IsError {
				t.Error("expected a tool error result")
			}
		})
	}
}
