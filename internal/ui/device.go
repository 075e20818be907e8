package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nitzanw/switcherctl/internal/discovery"
)

// StateBadge renders a device power state with its conventional color.
func StateBadge(state discovery.DeviceState) string {
	switch state {
	case discovery.StateOn:
		return SuccessStyle.Render("on ")
	case discovery.StateOff:
		return MutedStyle.Render("off")
	default:
		return WarnStyle.Render("?  ")
	}
}

// DeviceRow renders one discovered device as a single listing line. A
// non-empty alias marks the device as paired; a non-zero lastSeen adds age
// information for cached entries.
func DeviceRow(d *discovery.Device, alias string, lastSeen time.Time) string {
	var b strings.Builder

	if alias != "" {
		b.WriteString(PairedMarkerStyle.Render(PairedMarker + " "))
	} else {
		b.WriteString("  ")
	}

	b.WriteString(StateBadge(d.State))
	b.WriteString("  ")
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%-20s", d.Name)))
	b.WriteString(MutedStyle.Render(fmt.Sprintf(" id=%s  %s  %4dW", d.DeviceID, d.IPAddress, d.PowerConsumption)))

	if alias != "" {
		b.WriteString(MutedStyle.Render("  [" + alias + "]"))
	}
	if !lastSeen.IsZero() {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("  seen %s ago", formatAge(time.Since(lastSeen)))))
	}

	return b.String()
}

// PairSuggestion renders the hint printed under unpaired devices.
func PairSuggestion(d *discovery.Device) string {
	return MutedStyle.Render(fmt.Sprintf("      pair with: switcherctl pair <alias> --id %s", d.DeviceID))
}

// formatAge renders a duration in the coarsest useful unit.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}
