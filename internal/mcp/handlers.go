// ABOUTME: MCP tool handler implementations for the Clara chat server
// ABOUTME: Translates tool calls into session.Manager operations and JSON results
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/clara/internal/models"
	"github.com/harper/clara/internal/session"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	manager *session.Manager
	logger  *log.Logger
}

// NewHandlers creates handlers over manager
func NewHandlers(manager *session.Manager, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{manager: manager, logger: logger}
}

// StartSession handles the start_session tool
func (h *Handlers) StartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := h.manager.Create()
	h.logger.Debug("session started", "session", s.ID())
	return jsonResult(s.View())
}

// SendMessage handles the send_message tool
func (h *Handlers) SendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}

	view, err := s.Submit(ctx, message)
	return h.turnResult(s, view, err, strings.TrimSpace(message))
}

// ResendMessage handles the resend_message tool
func (h *Handlers) ResendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	var pending string
	if before := s.View(); before.Pending() {
		pending = before.Turns[len(before.Turns)-1].Text
	}

	view, err := s.Resend(ctx)
	return h.turnResult(s, view, err, pending)
}

// turnResult reports one Submit or Resend. Validation failures are tool errors;
// remote failures are reported in the result so the caller can resend.
func (h *Handlers) turnResult(s *session.Session, view session.View, err error, userText string) (*mcp.CallToolResult, error) {
	if err != nil {
		if session.IsValidation(err) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		h.logger.Warn("turn failed", "session", s.ID(), "err", err)
	}

	response := map[string]interface{}{
		"session_id":   view.SessionID,
		"state":        view.State,
		"conversation": view.Turns,
	}
	if reply, ok := replyTo(view, userText); err == nil && ok {
		response["reply"] = reply
	}
	if view.Error != "" {
		response["error"] = view.Error
		response["error_kind"] = view.ErrorKind
	}
	return jsonResult(response)
}

// replyTo returns the last assistant turn when it answers userText. A conversation
// cleared mid-call ends with the greeting instead and has no reply.
func replyTo(view session.View, userText string) (string, bool) {
	n := len(view.Turns)
	if n < 2 || userText == "" {
		return "", false
	}
	last, prev := view.Turns[n-1], view.Turns[n-2]
	if last.Role != models.RoleAssistant || prev.Role != models.RoleUser || prev.Text != userText {
		return "", false
	}
	return last.Text, true
}

// ClearConversation handles the clear_conversation tool
func (h *Handlers) ClearConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(s.Clear())
}

// GetConversation handles the get_conversation tool
func (h *Handlers) GetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(s.View())
}

// EndSession handles the end_session tool
func (h *Handlers) EndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	if err := h.manager.Delete(sessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", err, sessionID)), nil
	}
	h.logger.Debug("session ended", "session", sessionID)

	return jsonResult(map[string]interface{}{
		"session_id": sessionID,
		"ended":      true,
	})
}

func (h *Handlers) lookup(request mcp.CallToolRequest) (*session.Session, *mcp.CallToolResult) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return nil, mcp.NewToolResultError("session_id argument is required and must be a string")
	}
	s, err := h.manager.Get(sessionID)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("%v: %s", err, sessionID))
	}
	return s, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
