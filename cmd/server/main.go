// ABOUTME: Main entry point for the Clara MCP server with stdio transport
// ABOUTME: Initializes config, model client, interaction log and session tools
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/clara/internal/config"
	"github.com/harper/clara/internal/interactionlog"
	"github.com/harper/clara/internal/llm"
	"github.com/harper/clara/internal/mcp"
	"github.com/harper/clara/internal/session"
	"github.com/harper/clara/internal/styler"
)

func main() {
	// stdout carries the protocol, so logs go to stderr
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "clara-server"})

	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		ChatModel: cfg.Model,
	})
	if err != nil {
		logger.Fatal("failed to initialize model client", "err", err)
	}

	sink, err := interactionlog.OpenSink(cfg)
	if err != nil {
		logger.Warn("interaction logging disabled", "sink", cfg.LogSink, "err", err)
		sink = interactionlog.NopSink{}
	}
	recorder := interactionlog.New(sink, logger)
	defer func() { _ = recorder.Close() }()

	var st styler.Styler = styler.Plain{}
	if cfg.StyleReplies {
		st = styler.NewStyler()
	}

	manager := session.NewManager(session.Options{
		Model:       client,
		Styler:      st,
		Recorder:    recorder,
		Logger:      logger,
		Window:      cfg.HistoryWindow,
		Timeout:     cfg.Timeout,
		Temperature: float32(cfg.Temperature),
		TopP:        float32(cfg.TopP),
		MaxTokens:   cfg.MaxTokens,
	})

	server := mcpserver.NewMCPServer(
		"Clara Health Assistant",
		"0.1.0",
	)
	mcp.RegisterTools(server, manager, logger)

	logger.Info("Clara MCP server starting on stdio")
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error("server error", "err", err)
		_ = recorder.Close()
		os.Exit(1)
	}
}
