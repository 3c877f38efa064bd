package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#cba6f7"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af"))
	urgentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f38ba8"))
	boxStyle     = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475a")).
			Padding(0, 1)
)

// count renders an integer with thousands separators.
func count(n int) string {
	return printer.Sprintf("%d", n)
}

// humanBytes renders a byte count with a binary unit.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return printer.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return printer.Sprintf("%.1f %siB", float64(n)/float64(div), string("KMGTPE"[exp]))
}

func shortTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// daysLeft styles a days-until-deletion figure by urgency.
func daysLeft(days int) string {
	label := fmt.Sprintf("%d days", days)
	switch {
	case days <= 1:
		return urgentStyle.Render(label)
	case days <= 3:
		return warnStyle.Render(label)
	default:
		return label
	}
}
