package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tokenmeter/tokenmeter-tui/internal/ui/styles"
)

var spinnerLabelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondary)

// LoadingSpinner pairs a bubbles spinner with a status label.
type LoadingSpinner struct {
	model spinner.Model
	label string
}

// NewSpinner returns a dot spinner with the given status label.
func NewSpinner(label string) LoadingSpinner {
	return LoadingSpinner{
		model: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
		label: label,
	}
}

// Init starts the spinner animation.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.model.Tick
}

// Tick returns the spinner's tick command.
func (l LoadingSpinner) Tick() tea.Cmd {
	return l.model.Tick
}

// Update advances the animation on tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.model, cmd = l.model.Update(msg)
	return l, cmd
}

// View renders the spinner glyph only.
func (l LoadingSpinner) View() string {
	return l.model.View()
}

// ViewWithLabel renders the spinner followed by its label.
func (l LoadingSpinner) ViewWithLabel() string {
	if l.label == "" {
		return l.model.View()
	}
	return l.model.View() + " " + spinnerLabelStyle.Render(l.label)
}

// SetLabel replaces the status label.
func (l *LoadingSpinner) SetLabel(label string) {
	l.label = label
}

// Label returns the current status label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// RenderSpinnerCentered centers the labelled spinner in the given box.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.ViewWithLabel(), width, height)
}
