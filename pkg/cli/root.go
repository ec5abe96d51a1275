package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mockbay",
	Short: "mockbay is a virtual endpoint server",
	Long: `mockbay registers virtual endpoints under /test/ and /testws/ and serves
them back as buffered HTTP responses, paced SSE streams or WebSocket
sessions, with a live per-visitor traffic log.

Configuration can be provided via flags, environment variables, or a
YAML configuration file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.
func Execute(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
