package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tokenmeter/tokenmeter-tui/internal/models"
	"github.com/tokenmeter/tokenmeter-tui/internal/ui/components"
	"github.com/tokenmeter/tokenmeter-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() || m.state.IsHistoryLoading() {
		return m.renderLoading()
	}

	hourly := m.state.GetHourlyStats()
	if len(hourly) == 0 {
		return m.renderEmpty()
	}

	var sections []string

	sections = append(sections,
		m.renderHeader(),
		m.renderTokenChart(hourly),
		m.renderHourlyHeatmap(hourly),
		m.renderTotalsCard(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render("No historical data available yet."),
		styles.HelpStyle.Render("Data will appear as usage records are stored."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.state.GetTimeRange().String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if total := m.state.GetTotalStats(); total != nil && !total.FirstRecord.IsZero() {
		dataRange := fmt.Sprintf("Data: %s → %s",
			total.FirstRecord.Format("Jan 2, 2006 15:04"),
			total.LastRecord.Format("Jan 2, 2006 15:04"),
		)
		subtitle = styles.HelpStyle.Render(dataRange)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderTokenChart(hourly []models.HourlyStats) string {
	cardWidth := m.cardWidth()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Tokens Per Hour")), "")

	promptData := make([]float64, len(hourly))
	completionData := make([]float64, len(hourly))
	for i, h := range hourly {
		promptData[i] = float64(h.TotalPromptTokens)
		completionData[i] = float64(h.TotalCompletionTokens)
	}

	chartWidth := max(cardWidth-12, 30)
	chartHeight := 8

	chart := components.RenderDualLineChart(promptData, completionData, chartWidth, chartHeight,
		fmt.Sprintf("%d hourly buckets", len(hourly)))

	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "")
	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Prompt", Color: components.ChartPromptColor},
		{Label: "Completion", Color: components.ChartCompletionColor},
	})
	rows = append(rows, "  "+legend, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderHourlyHeatmap(hourly []models.HourlyStats) string {
	cardWidth := m.cardWidth()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("🕐")
	rows = append(rows,
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Hourly Pattern")),
		"",
	)

	// Aggregate call counts by hour of day across the window.
	pattern := make([]float64, 24)
	for _, h := range hourly {
		pattern[h.Hour.Hour()] += float64(h.CallCount)
	}

	heatmap := components.RenderHourlyHeatmap(pattern)
	for line := range strings.SplitSeq(heatmap, "\n") {
		rows = append(rows, "  "+line)
	}

	peakHour, peakCalls := peakOf(pattern)
	if peakCalls > 0 {
		rows = append(rows, "", fmt.Sprintf("  Peak: %s (%.0f calls)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
				Render(fmt.Sprintf("%02d:00-%02d:00", peakHour, (peakHour+1)%24)),
			peakCalls,
		))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTotalsCard() string {
	cardWidth := m.cardWidth()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("Σ")
	rows = append(rows,
		fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("All-Time Totals")),
		"",
	)

	total := m.state.GetTotalStats()
	if total == nil || total.CallCount == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No stored records yet"))
	} else {
		label := lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(20)
		value := lipgloss.NewStyle().Foreground(styles.TextPrimary).Bold(true)

		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("API calls"),
			value.Render(formatCount(total.CallCount))))
		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("Prompt tokens"),
			lipgloss.NewStyle().Foreground(styles.Prompt).Bold(true).Render(formatCount(total.TotalPromptTokens))))
		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("Completion tokens"),
			lipgloss.NewStyle().Foreground(styles.Completion).Bold(true).Render(formatCount(total.TotalCompletionTokens))))
		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("Total tokens"),
			value.Render(formatCount(total.TotalTokens()))))
		rows = append(rows, "")
		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("Sources"),
			value.Render(formatCount(total.UniqueSources))))
		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("Models"),
			value.Render(formatCount(total.UniqueModels))))
		rows = append(rows, fmt.Sprintf("  %s %s",
			label.Render("Sessions"),
			value.Render(formatCount(total.UniqueSessions))))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// peakOf returns the index and value of the largest entry.
func peakOf(values []float64) (int, float64) {
	peakIdx := 0
	peakVal := 0.0
	for i, v := range values {
		if v > peakVal {
			peakIdx = i
			peakVal = v
		}
	}
	return peakIdx, peakVal
}

// formatCount formats an integer with thousands separators.
func formatCount(n int64) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", formatCount(n/1000), n%1000)
}
