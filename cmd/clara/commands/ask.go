// ABOUTME: Ask command sends a single message to Clara and prints her reply
// ABOUTME: Reads the message from arguments or stdin, supports text and JSON output
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/clara/internal/session"
)

// askResult is the JSON shape printed by ask --format json
type askResult struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
	Message   string `json:"message"`
	Reply     string `json:"reply"`
}

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask Clara a single question",
		Long: `Send one message to Clara and print her reply.

Examples:
  clara ask "I have had a headache since this morning"
  echo "What are some healthy snacks?" | clara ask
  clara ask --format json "Is it okay to run with a cold?"`,
		RunE: runAsk,
	}

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("no message provided")
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s := session.New(a.sessionOptions())
	view, err := s.Submit(cmd.Context(), text)
	if err != nil {
		return err
	}
	reply := view.Turns[len(view.Turns)-1].Text

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(askResult{
			SessionID: view.SessionID,
			Model:     a.model.ModelID(),
			Message:   text,
			Reply:     reply,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Clara: %s\n", reply)
	return nil
}
