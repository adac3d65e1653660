package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokenmeter/tokenmeter-tui/internal/app"
	"github.com/tokenmeter/tokenmeter-tui/internal/models"
)

func TestNew(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if m == nil {
		t.Fatal("New returned nil")
	}
}

func TestModel_Init(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestModel_View_Loading(t *testing.T) {
	state := app.NewState()
	m := New(state)
	m.SetSize(80, 24)

	view := m.View()
	if view == "" {
		t.Error("loading view returned empty string")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewState()
	state.SetLoading("initial", false)
	m := New(state)
	m.SetSize(80, 40)

	// View with no data
	view := m.View()
	if !strings.Contains(view, "No usage recorded") {
		t.Error("empty view should show placeholder")
	}

	summary := models.Summarize([]models.UsageRecord{
		mustRecord(t, "api", 100, 50, models.WithModel("gpt-4o")),
		mustRecord(t, "cli", 30, 20),
	})
	state.SetSummary(summary)
	state.SetRecentRecords([]models.UsageRecord{
		mustRecord(t, "api", 100, 50, models.WithModel("gpt-4o")),
	})

	view = m.View()
	if !strings.Contains(view, "api") {
		t.Error("View should contain source name")
	}
	if !strings.Contains(view, "gpt-4o") {
		t.Error("View should contain model name")
	}
	if !strings.Contains(view, "200") {
		t.Error("View should contain total token count")
	}
}

func TestModel_SetSize(t *testing.T) {
	state := app.NewState()
	m := New(state)
	m.SetSize(100, 50)
}

func TestModel_Help(t *testing.T) {
	state := app.NewState()
	m := New(state)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(m.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}

func TestModel_KeyBindings(t *testing.T) {
	state := app.NewState()
	m := New(state)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}

	for _, tt := range tests {
		if got := formatCount(tt.n); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a-very-long-identifier", 10); got != "a-very-..." {
		t.Errorf("truncate long = %q", got)
	}
}

func mustRecord(t *testing.T, source string, prompt, completion int64, opts ...models.RecordOption) models.UsageRecord {
	t.Helper()
	opts = append(opts, models.WithTimestamp(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	record, err := models.NewRecord(source, prompt, completion, opts...)
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	return record
}
