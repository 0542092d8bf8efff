// ABOUTME: MCP tool definitions and registration for the Clara chat server
// ABOUTME: Exposes session lifecycle and chat turns as six MCP tools addressed by session_id
package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/clara/internal/session"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, manager *session.Manager, logger *log.Logger) *Handlers {
	handlers := NewHandlers(manager, logger)

	sessionIDProperty := map[string]interface{}{
		"type":        "string",
		"description": "Session identifier returned by start_session",
	}

	// 1. start_session - Open a new conversation seeded with Clara's greeting
	server.AddTool(mcp.Tool{
		Name:        "start_session",
		Description: "Start a new conversation with Clara, the AI health companion. Returns the session_id and the greeting.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.StartSession)

	// 2. send_message - Run one chat turn
	server.AddTool(mcp.Tool{
		Name:        "send_message",
		Description: "Send a user message to Clara and return her reply along with the updated conversation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"message": map[string]interface{}{
					"type":        "string",
					"description": "What the user wants to tell Clara",
				},
			},
			Required: []string{"session_id", "message"},
		},
	}, handlers.SendMessage)

	// 3. resend_message - Ask again for the unanswered turn after a failure
	server.AddTool(mcp.Tool{
		Name:        "resend_message",
		Description: "Resend the last user message after send_message reported an error. New messages are refused until the failed one is resent or the conversation is cleared.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, handlers.ResendMessage)

	// 4. clear_conversation - Reset to the greeting
	server.AddTool(mcp.Tool{
		Name:        "clear_conversation",
		Description: "Clear a conversation back to Clara's greeting.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, handlers.ClearConversation)

	// 5. get_conversation - Read the transcript
	server.AddTool(mcp.Tool{
		Name:        "get_conversation",
		Description: "Get the full conversation and state of a session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, handlers.GetConversation)

	// 6. end_session - Drop the session
	server.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "End a session and discard its conversation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, handlers.EndSession)

	return handlers
}
