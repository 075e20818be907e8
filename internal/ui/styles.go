package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for command output
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, on state
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, off state
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings, unknown state
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles for command output
var (
	// TitleStyle is for section titles (e.g., "Discovered devices")
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// SuccessStyle is for success messages and the on state
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	// ErrorStyle is for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// WarnStyle is for warnings and the unknown state
	WarnStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// MutedStyle is for secondary information (ids, timestamps, hints)
	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// KeyStyle is for detail keys in field listings
	KeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(18)

	// ValueStyle is for detail values in field listings
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// PairedMarkerStyle marks devices with an existing pairing
	PairedMarkerStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)
)

// Status markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	PairedMarker  = "⚷"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// ErrorBoxStyle returns the border style for error result boxes
func ErrorBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width - 2).
		Padding(1, 2)
}
