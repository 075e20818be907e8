package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm prints a y/N prompt and reads one line from stdin. Anything other
// than "y" or "yes" (case-insensitive) counts as a decline.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println()
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		fmt.Println(MutedStyle.Render("  Operation cancelled."))
		return false
	}
}

// ConfirmDangerousOperation displays a warning box and prompts the user to
// confirm a destructive operation. Returns true if the user confirmed.
func ConfirmDangerousOperation(title string, warnings []string) bool {
	width := GetTerminalWidth()
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	var lines []string

	titleLine := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true).
		Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", title))
	lines = append(lines, "")
	lines = append(lines, titleLine)
	lines = append(lines, "")

	for _, warning := range warnings {
		bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	content := strings.Join(lines, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(content)

	fmt.Println(box)
	fmt.Println()

	return Confirm("Proceed?")
}

// ClearCacheConfirmation is a pre-configured confirmation for wiping the
// discovery cache.
func ClearCacheConfirmation(entries int) bool {
	return ConfirmDangerousOperation(
		"CLEAR DISCOVERY CACHE",
		[]string{
			fmt.Sprintf("This removes %d cached device record(s)", entries),
			"Commands addressing devices by id will need a fresh scan",
			"Pairings are not affected",
		},
	)
}
