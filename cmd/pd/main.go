// Command pd is the peopledesk maintenance CLI.
//
// Usage:
//
//	pd seed --db peopledesk.db      Load the demo data set
//	pd stats --db peopledesk.db     Record counts per kind and status
//	pd stats --server URL           The same counts, read through the API
//	pd health --server URL          Check that the API answers
//	pd events --tail 50             Client JSONL event log viewer
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/peopledesk/internal/logging"
)

var (
	// Global flags
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "pd",
	Short: "peopledesk maintenance CLI",
	Long: `pd seeds and inspects a peopledesk store, checks a running server and
reads the terminal client's structured event log.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.InitWriter(os.Stderr, level, false)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")

	rootCmd.AddCommand(seedCmd, statsCmd, healthCmd, eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pd: %v\n", err)
		os.Exit(1)
	}
}
