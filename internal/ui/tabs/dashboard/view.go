package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tokenmeter/tokenmeter-tui/internal/models"
	"github.com/tokenmeter/tokenmeter-tui/internal/ui/components"
	"github.com/tokenmeter/tokenmeter-tui/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	summary := m.state.GetSummary()

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderTotalsCard(summary))
	sections = append(sections, m.renderSourcesCard(summary))
	sections = append(sections, m.renderBreakdownCard(summary))
	sections = append(sections, m.renderRecentCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Token Meter")
	subtitle := styles.HelpStyle.Render("LLM token usage, live")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

// renderTotalsCard shows the session totals.
func (m *Model) renderTotalsCard(summary models.UsageSummary) string {
	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Session Totals")))
	rows = append(rows, "")

	label := lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(20)
	value := lipgloss.NewStyle().Foreground(styles.TextPrimary).Bold(true)

	rows = append(rows, fmt.Sprintf("  %s %s",
		label.Render("API calls"),
		value.Render(formatCount(summary.CallCount))))
	rows = append(rows, fmt.Sprintf("  %s %s",
		label.Render("Prompt tokens"),
		lipgloss.NewStyle().Foreground(styles.Prompt).Bold(true).Render(formatCount(summary.TotalPromptTokens))))
	rows = append(rows, fmt.Sprintf("  %s %s",
		label.Render("Completion tokens"),
		lipgloss.NewStyle().Foreground(styles.Completion).Bold(true).Render(formatCount(summary.TotalCompletionTokens))))
	rows = append(rows, fmt.Sprintf("  %s %s",
		label.Render("Total tokens"),
		value.Render(formatCount(summary.TotalTokens()))))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderSourcesCard shows per-source usage with share bars.
func (m *Model) renderSourcesCard(summary models.UsageSummary) string {
	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("By Source")))

	if len(summary.SourceOrder) == 0 {
		rows = append(rows, "")
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No usage recorded yet")))

		return styles.CardStyle.Width(m.cardWidth()).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	rows = append(rows, "")

	total := summary.TotalTokens()
	barWidth := max(m.cardWidth()-8, 20)

	for _, source := range summary.SourceOrder {
		usage := summary.BySource[source]
		percent := 0.0
		if total > 0 {
			percent = float64(usage.TotalTokens()) / float64(total) * 100
		}
		rows = append(rows, "  "+components.SimpleUsageBar(percent, source, barWidth))
		detail := fmt.Sprintf("      %s calls · %s prompt · %s completion",
			formatCount(usage.CallCount),
			formatCount(usage.PromptTokens),
			formatCount(usage.CompletionTokens))
		rows = append(rows, styles.HelpStyle.Render(detail))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderBreakdownCard shows model and session token breakdowns side by side.
func (m *Model) renderBreakdownCard(summary models.UsageSummary) string {
	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("By Model / Session")))
	rows = append(rows, "")

	if len(summary.ModelOrder) == 0 && len(summary.SessionOrder) == 0 {
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No model or session data")))

		return styles.CardStyle.Width(m.cardWidth()).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	chartWidth := max(m.cardWidth()-10, 20)

	if len(summary.ModelOrder) > 0 {
		rows = append(rows, styles.SubTitleStyle.Render("  Models"))
		values := make([]float64, 0, len(summary.ModelOrder))
		labels := make([]string, 0, len(summary.ModelOrder))
		for _, model := range summary.ModelOrder {
			values = append(values, float64(summary.ByModel[model]))
			labels = append(labels, model)
		}
		rows = append(rows, components.RenderBarChart(values, labels, chartWidth))
	}

	if len(summary.SessionOrder) > 0 {
		if len(summary.ModelOrder) > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, styles.SubTitleStyle.Render("  Sessions"))
		for _, session := range summary.SessionOrder {
			tokens := summary.BySession[session]
			line := fmt.Sprintf("  %s %s",
				lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(24).Render(truncate(session, 24)),
				lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(formatCount(tokens)))
			rows = append(rows, line)
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderRecentCard shows the latest persisted records.
func (m *Model) renderRecentCard() string {
	records := m.state.GetRecentRecords()

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Recent Calls")))

	if len(records) == 0 {
		rows = append(rows, "")
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No calls recorded")))

		return styles.CardStyle.Width(m.cardWidth()).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	rows = append(rows, "")

	// Per-call token totals, oldest first so the sparkline reads
	// left to right in time order.
	tokens := make([]float64, len(records))
	for i, record := range records {
		tokens[len(records)-1-i] = float64(record.TotalTokens())
	}
	sparkWidth := min(len(tokens), m.cardWidth()-8)
	rows = append(rows, "  "+components.RenderColoredSparkline(tokens, sparkWidth))
	rows = append(rows, "")

	header := fmt.Sprintf("  %-8s %-14s %-18s %8s %8s",
		"TIME", "SOURCE", "MODEL", "PROMPT", "COMPL")
	rows = append(rows, styles.TableHeaderStyle.Render(header))

	limit := min(len(records), 10)
	for _, record := range records[:limit] {
		model := record.Model
		if model == "" {
			model = "-"
		}
		line := fmt.Sprintf("  %-8s %-14s %-18s %8s %8s",
			record.Timestamp.Format("15:04:05"),
			truncate(record.Source, 14),
			truncate(model, 18),
			formatCount(record.PromptTokens),
			formatCount(record.CompletionTokens))
		rows = append(rows, styles.TableCellStyle.Render(line))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 3 {
		return s[:limit]
	}
	return s[:limit-3] + "..."
}

// formatCount renders a count with thousands separators.
func formatCount(n int64) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", formatCount(n/1000), n%1000)
}
