// ABOUTME: Shared startup for commands that talk to the model
// ABOUTME: Loads .env and config, builds the logger, model client and interaction log
package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/clara/internal/config"
	"github.com/harper/clara/internal/interactionlog"
	"github.com/harper/clara/internal/llm"
	"github.com/harper/clara/internal/persona"
	"github.com/harper/clara/internal/session"
	"github.com/harper/clara/internal/styler"
)

// newModel builds the remote model client; tests swap it for a stub
var newModel = func(cfg *config.Config) (llm.Model, error) {
	client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		ChatModel: cfg.Model,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// app bundles everything a chat-capable command needs
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	model    llm.Model
	recorder *interactionlog.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	// Load .env file if it exists (for API keys)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	model, err := newModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing model client: %w", err)
	}

	// logging is best effort, so a broken sink never stops the chat
	sink, err := interactionlog.OpenSink(cfg)
	if err != nil {
		logger.Warn("interaction logging disabled", "sink", cfg.LogSink, "err", err)
		sink = interactionlog.NopSink{}
	}

	logger.Debug("configuration loaded", "model", cfg.Model, "sink", cfg.LogSink, "window", cfg.HistoryWindow)

	return &app{
		cfg:      cfg,
		logger:   logger,
		model:    model,
		recorder: interactionlog.New(sink, logger),
	}, nil
}

func (a *app) sessionOptions() session.Options {
	var st styler.Styler = styler.Plain{}
	if a.cfg.StyleReplies {
		st = styler.NewStyler()
	}

	return session.Options{
		Persona:     persona.Clara(),
		Model:       a.model,
		Styler:      st,
		Recorder:    a.recorder,
		Logger:      a.logger,
		Window:      a.cfg.HistoryWindow,
		Timeout:     a.cfg.Timeout,
		Temperature: float32(a.cfg.Temperature),
		TopP:        float32(a.cfg.TopP),
		MaxTokens:   a.cfg.MaxTokens,
	}
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		a.logger.Warn("closing interaction log", "err", err)
	}
}

// newLogger builds the leveled logger; --verbose and --quiet override the configured level
func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "clara",
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	switch {
	case verbose:
		lvl = log.DebugLevel
	case quiet:
		lvl = log.ErrorLevel
	}
	logger.SetLevel(lvl)

	return logger
}
