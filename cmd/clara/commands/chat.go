// ABOUTME: Chat command opens the interactive terminal conversation with Clara
// ABOUTME: Runs one session in a full-screen bubbletea UI until the user quits
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/clara/internal/session"
	"github.com/harper/clara/internal/storage/sqlite"
	"github.com/harper/clara/internal/tui"
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Clara in the terminal",
		Long: `Open an interactive conversation with Clara.

Keys:
  enter    send your message
  ctrl+r   resend a message that failed
  ctrl+l   clear the chat
  ctrl+t   show or hide quick tips
  esc      quit

The conversation lives only in memory and is gone when you quit.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// the full-screen UI owns the terminal, so logs go to a file or nowhere
	if verbose {
		f, err := openDebugLog()
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		a.logger.SetOutput(f)
	} else {
		a.logger.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := session.New(a.sessionOptions())
	a.logger.Debug("chat started", "session", s.ID())

	if err := tui.Run(ctx, s); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat UI: %w", err)
	}
	return nil
}

func openDebugLog() (*os.File, error) {
	dir := sqlite.DefaultDataDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return f, nil
}
