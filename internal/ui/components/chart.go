// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/tokenmeter/tokenmeter-tui/internal/ui/styles"
)

// Series colors shared by charts and their legends.
var (
	ChartPromptColor     = lipgloss.Color("#4285f4")
	ChartCompletionColor = lipgloss.Color("#cc785c")
)

const minChartWidth, minChartHeight = 20, 3

// seriesMax returns the largest value in the series, or 1 for an empty
// or all-zero series so callers can divide by it.
func seriesMax(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return 1
	}
	return peak
}

// bucket maps a value to an index into a ramp of n levels, scaled
// against peak. The result is always a valid index.
func bucket(value, peak float64, n int) int {
	idx := int(value / peak * float64(n-1))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// RenderDualLineChart plots prompt and completion tokens as two series
// on one chart.
func RenderDualLineChart(prompt, completion []float64, width, height int, caption string) string {
	if len(prompt) == 0 && len(completion) == 0 {
		return styles.HelpStyle.Render("No data available")
	}
	width = max(width, minChartWidth)
	height = max(height, minChartHeight)

	// asciigraph wants equal-length series; pad the shorter with zeros.
	n := max(len(prompt), len(completion))
	series := [][]float64{make([]float64, n), make([]float64, n)}
	copy(series[0], prompt)
	copy(series[1], completion)

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
	)
}

// RenderBarChart renders one horizontal bar per value, labelled on the
// left and annotated with the formatted value on the right.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	peak := seriesMax(values)
	gutter := 0
	for _, label := range labels {
		gutter = max(gutter, len(label))
	}
	// Room for the label, the axis, and the value annotation.
	span := max(width-gutter-10, 10)

	lines := make([]string, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		fill := int(v / peak * float64(span))
		if fill < 0 {
			fill = 0
		}
		lines[i] = fmt.Sprintf("%*s │%s %s",
			gutter, label, strings.Repeat("█", fill), groupDigits(int64(v)))
	}
	return strings.Join(lines, "\n")
}

// heatRamp pairs intensity glyphs with the color each level renders in.
var heatRamp = []struct {
	glyph rune
	color lipgloss.TerminalColor
}{
	{'░', styles.Subtle},
	{'▒', styles.Success},
	{'▓', styles.Warning},
	{'█', styles.Error},
}

// RenderHourlyHeatmap renders 24 hour slots as a single row of
// intensity blocks, split at noon.
func RenderHourlyHeatmap(pattern []float64) string {
	if len(pattern) != 24 {
		padded := make([]float64, 24)
		copy(padded, pattern)
		pattern = padded
	}
	peak := seriesMax(pattern)

	var b strings.Builder
	b.WriteString("00 ")
	for hour, v := range pattern {
		level := heatRamp[bucket(v, peak, len(heatRamp))]
		b.WriteString(lipgloss.NewStyle().Foreground(level.color).Render(string(level.glyph)))
		if hour == 11 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(" 23")
	return b.String()
}

var sparkRamp = []rune("▁▂▃▄▅▆▇█")

// RenderColoredSparkline renders a compact inline sparkline, each cell
// colored by how close its value sits to the series peak. Series longer
// than width are downsampled.
func RenderColoredSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	peak := seriesMax(values)
	stride := max(float64(len(values))/float64(width), 1)

	var b strings.Builder
	for i := 0; i < width; i++ {
		at := int(float64(i) * stride)
		if at >= len(values) {
			break
		}
		v := values[at]
		cell := string(sparkRamp[bucket(v, peak, len(sparkRamp))])
		b.WriteString(styles.GetUsageStyle(v / peak * 100).Render(cell))
	}
	return b.String()
}

// LegendItem is a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend renders a one-line legend for a chart's series.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		swatch := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts[i] = swatch + " " + item.Label
	}
	return strings.Join(parts, "  ")
}

// groupDigits formats n with thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
