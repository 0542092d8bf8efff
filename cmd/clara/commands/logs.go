// ABOUTME: Logs command lists recent anonymized interaction records
// ABOUTME: Reads back from the configured sink, shows a table, JSON or YAML
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/clara/internal/config"
	"github.com/harper/clara/internal/interactionlog"
)

var logsLimit int

// NewLogsCmd creates the logs command
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List recent interaction records",
		Long: `List the most recent interaction records, newest first.

Records hold only a short hash of the user message, message lengths and
the model name. Message text is never logged.

Examples:
  clara logs
  clara logs --limit 5
  clara logs --format json
  clara logs --format yaml > interactions.yaml`,
		Args: cobra.NoArgs,
		RunE: runLogs,
	}

	cmd.Flags().IntVar(&logsLimit, "limit", 20, "Maximum number of records to show")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(logsLimit, "limit"); err != nil {
		return err
	}

	_ = godotenv.Load()

	// reading logs needs no credential
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingAPIKey) {
		return err
	}

	records, err := interactionlog.Recent(cfg, logsLimit)
	if err != nil {
		return fmt.Errorf("reading interaction log: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if outputFormat == "yaml" {
		yamlData, err := yaml.Marshal(map[string]interface{}{
			"exported_at":  time.Now().UTC().Format(time.RFC3339),
			"interactions": records,
		})
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(yamlData))
		return nil
	}

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No interactions logged yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tUSER HASH\tUSER LEN\tREPLY LEN\tMODEL")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			formatTime(rec.Timestamp), rec.UserHash, rec.UserLength, rec.AILength, truncate(rec.Model, 24))
	}
	return w.Flush()
}
