// ABOUTME: Root command for the Clara CLI with global flags
// ABOUTME: Wires chat, ask, logs, mcp and version subcommands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ██████╗██╗      █████╗ ██████╗  █████╗
██╔════╝██║     ██╔══██╗██╔══██╗██╔══██╗
██║     ██║     ███████║██████╔╝███████║
██║     ██║     ██╔══██║██╔══██╗██╔══██║
╚██████╗███████╗██║  ██║██║  ██║██║  ██║
 ╚═════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝
`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clara",
		Short: "Clara, your AI health companion",
		Long: banner + `
Clara is a conversational health assistant. She listens to your symptoms,
offers general wellbeing guidance and first aid, and points you to a
professional when you need one. Clara is not a certified doctor.

Set CLARA_API_KEY (or GOOGLE_API_KEY) before chatting.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text, json or yaml")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewChatCmd(),
		NewAskCmd(),
		NewLogsCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
