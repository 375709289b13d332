// internal/tui/badges.go
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/yolometrics/internal/resolve"
)

// metricStatus summarizes how one metric resolved.
type metricStatus string

const (
	statusFound    metricStatus = "found"
	statusFallback metricStatus = "fallback"
	statusMissing  metricStatus = "missing"
)

func deriveStatus(m resolve.MetricMatch) metricStatus {
	switch {
	case !m.Found():
		return statusMissing
	case m.Fallback:
		return statusFallback
	default:
		return statusFound
	}
}

// renderStatusBadge returns a Lipgloss-styled badge for a metric status.
func renderStatusBadge(status metricStatus) string {
	color := lipgloss.Color("40")
	switch status {
	case statusFallback:
		color = lipgloss.Color("214")
	case statusMissing:
		color = lipgloss.Color("9")
	}
	badgeStyle := lipgloss.NewStyle().Background(lipgloss.Color("0")).Foreground(color).Padding(0, 1).Width(10)
	return badgeStyle.Render(string(status))
}

// renderCountBadge returns a badge reading "found/total metrics".
func renderCountBadge(found, total int) string {
	bg := lipgloss.Color("229")
	if found == 0 {
		bg = lipgloss.Color("203")
	}
	badgeStyle := lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("0")).Padding(0, 1).MarginLeft(1)
	return badgeStyle.Render(fmt.Sprintf("%d/%d metrics", found, total))
}

func countFound(rec *resolve.Record) int {
	n := 0
	for _, m := range rec.Metrics {
		if m.Found() {
			n++
		}
	}
	return n
}
