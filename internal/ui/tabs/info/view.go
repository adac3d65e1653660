package info

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/tokenmeter/tokenmeter-tui/internal/ui/styles"
	"github.com/tokenmeter/tokenmeter-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderConfigCard())
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	cardWidth := m.width - 6
	if cardWidth < 50 {
		cardWidth = 50
	}
	if cardWidth > 80 {
		cardWidth = 80
	}
	return cardWidth
}

// renderConfigCard renders the configuration paths card.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		rows = append(rows, m.renderConfigRow("Database", m.config.DatabasePath))
		rows = append(rows, m.renderConfigRow("Usage Log", m.config.UsageLogPath))
		rows = append(rows, m.renderConfigRow("Refresh", m.config.RefreshInterval.String()))
		threshold := "disabled"
		if m.config.AlertThreshold > 0 {
			threshold = fmt.Sprintf("%d tokens", m.config.AlertThreshold)
		}
		rows = append(rows, m.renderConfigRow("Alert Threshold", threshold))
		rows = append(rows, m.renderConfigRow("Recent Limit", fmt.Sprintf("%d", m.config.RecentLimit)))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	rows = append(rows, "")
	rows = append(rows, styles.HelpStyle.Render("Press 'c' to copy the database path"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Token Meter"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.Number()))
	rows = append(rows, m.renderConfigRow("Build Date", version.BuildDate()))
	rows = append(rows, m.renderConfigRow("Git Commit", version.BuildCommit()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	if stats := m.state.GetStats(); stats != nil {
		rows = append(rows, fmt.Sprintf("Stored calls: %s",
			styles.InfoTextStyle.Render(fmt.Sprintf("%d", stats.CallCount))))
	} else {
		summary := m.state.GetSummary()
		rows = append(rows, fmt.Sprintf("Session calls: %s",
			styles.InfoTextStyle.Render(fmt.Sprintf("%d", summary.CallCount))))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
