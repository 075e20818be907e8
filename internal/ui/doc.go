// Package ui provides terminal output components for the switcherctl CLI.
//
// This package uses Lipgloss to render styled command output: device listing
// rows, success/failure result boxes with troubleshooting sections, and
// confirmation prompts for destructive operations. All components follow a
// "render once and exit" pattern; there is no interactive TUI loop.
//
// # Components
//
//   - DeviceRow / StateBadge: one-line device listings for discover output
//   - Result: success/failure/warning boxes with ordered detail rows
//   - Confirm / ConfirmDangerousOperation: stdin confirmation prompts
//
// Output adapts to the terminal width via golang.org/x/term, clamped between
// MinTerminalWidth and MaxContentWidth.
//
// # Logging Integration
//
// This package expects logging to be controlled via the SWITCHERCTL_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
