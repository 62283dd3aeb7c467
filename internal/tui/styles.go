package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/codeguardian/codeguardian/internal/types"
)

var (
	paneBorderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	statsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("237"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)

	healthUpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	healthDownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	healthUnknownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	sevCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	sevHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevMedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// severityText returns plain text for severity (ANSI codes break table truncation).
func severityText(s types.Severity) string {
	switch s {
	case types.SevCritical:
		return "CRIT"
	case types.SevMedium:
		return "MED"
	default:
		return string(s)
	}
}

func severityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SevCritical:
		return sevCriticalStyle
	case types.SevHigh:
		return sevHighStyle
	case types.SevMedium:
		return sevMedStyle
	default:
		return sevLowStyle
	}
}

func healthBadge(h types.HealthStatus) string {
	switch h {
	case types.HealthConnected:
		return healthUpStyle.Render("● connected")
	case types.HealthDisconnected:
		return healthDownStyle.Render("● disconnected")
	default:
		return healthUnknownStyle.Render("○ checking")
	}
}
