package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loadable-dev/loadable/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ┌─┐┌─┐┌┬┐┌┐ ┌─┐┌┐┌┌─┐┬ ┬
  ║  │ │├─┤ ││├┴┐├┤ ││││  ├─┤
  ╩═╝└─┘┴ ┴─┴┘└─┘└─┘┘└┘└─┘┴ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "loadbench",
		Short: "Notification latency benchmark for loadable managers",
		Long: `loadbench measures how fast loadable propagates state.

It starts an in-process fleet of async state managers, streams their
snapshots to WebSocket subscribers through the live bridge, and paces
refreshes against synthetic operations. At the end of a run it reports:

  • Notification latency percentiles (operation result to client snapshot)
  • Snapshot and refresh throughput
  • Observed failure rates under the silent-refresh policy
  • Go runtime and GC impact`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		runCmd(),
		initCmd(),
		profilesCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the loadbench ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
