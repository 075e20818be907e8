// Switcherctl is a command line controller for Switcher Power Plug devices.
//
// It discovers plugs from their UDP broadcasts on the local network and
// drives them over the proprietary TCP control protocol: switching on and
// off, reading state and power draw, and renaming. Discovered devices are
// cached locally and can be paired under short aliases for convenient
// addressing.
//
// Usage:
//
//	switcherctl [command] [flags]
//
// See 'switcherctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nitzanw/switcherctl/internal/logging"
	"github.com/nitzanw/switcherctl/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "switcherctl",
	Short: "Switcher Power Plug LAN controller",
	Long: `A command line controller for Switcher Power Plug smart plugs.

Discovers plugs from their broadcasts on the local network, switches them
on and off, reads their state and power draw, and manages a local cache
and alias pairings so devices can be addressed by name.

All communication stays on the LAN; no cloud account is involved.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("switcherctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
