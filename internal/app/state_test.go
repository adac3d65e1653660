package app

import (
	"testing"
	"time"

	"github.com/tokenmeter/tokenmeter-tui/internal/models"
	"github.com/tokenmeter/tokenmeter-tui/internal/services"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.Loading.Initial != true {
		t.Error("Initial loading should be true")
	}
	if s.GetTimeRange() != models.TimeRange24Hours {
		t.Error("default time range should be 24 hours")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("history", true)
	if !s.Loading.History {
		t.Error("History loading should be true")
	}
	if !s.IsHistoryLoading() {
		t.Error("IsHistoryLoading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("history", false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}
	if s.IsInitialLoading() {
		t.Error("IsInitialLoading should be false")
	}
}

func TestState_Summary(t *testing.T) {
	s := NewState()

	summary := models.Summarize([]models.UsageRecord{
		{Source: "api", PromptTokens: 100, CompletionTokens: 50, Timestamp: time.Now()},
		{Source: "cli", PromptTokens: 20, CompletionTokens: 10, Timestamp: time.Now()},
	})
	s.SetSummary(summary)

	got := s.GetSummary()
	if got.CallCount != 2 {
		t.Errorf("CallCount = %d, want 2", got.CallCount)
	}
	if got.TotalTokens() != 180 {
		t.Errorf("TotalTokens = %d, want 180", got.TotalTokens())
	}
}

func TestState_RecentRecords(t *testing.T) {
	s := NewState()

	s.SetRecentRecords([]models.UsageRecord{
		{Source: "api", PromptTokens: 1, CompletionTokens: 2, Timestamp: time.Now()},
	})

	got := s.GetRecentRecords()
	if len(got) != 1 {
		t.Fatalf("GetRecentRecords len = %d, want 1", len(got))
	}

	// Mutating the returned slice must not affect the state.
	got[0].Source = "mutated"
	if s.GetRecentRecords()[0].Source != "api" {
		t.Error("GetRecentRecords should return a copy")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_Stats(t *testing.T) {
	s := NewState()
	stats := services.StatsEvent{CallCount: 10, TotalTokens: 500}

	s.SetStats(stats)
	got := s.GetStats()
	if got == nil {
		t.Fatal("GetStats returned nil")
	}
	if got.CallCount != 10 {
		t.Errorf("CallCount = %d, want 10", got.CallCount)
	}
}

func TestState_HourlyStats(t *testing.T) {
	s := NewState()

	s.SetHourlyStats([]models.HourlyStats{
		{Hour: time.Now(), CallCount: 3},
	})

	got := s.GetHourlyStats()
	if len(got) != 1 {
		t.Fatalf("GetHourlyStats len = %d, want 1", len(got))
	}

	got[0].CallCount = 99
	if s.GetHourlyStats()[0].CallCount != 3 {
		t.Error("GetHourlyStats should return a copy")
	}
}

func TestState_TotalStats(t *testing.T) {
	s := NewState()

	if s.GetTotalStats() != nil {
		t.Error("TotalStats should be nil initially")
	}

	s.SetTotalStats(&models.TotalStats{CallCount: 7})
	if got := s.GetTotalStats(); got == nil || got.CallCount != 7 {
		t.Errorf("GetTotalStats = %v", got)
	}
}

func TestState_CycleTimeRange(t *testing.T) {
	s := NewState()

	if got := s.CycleTimeRange(); got != models.TimeRange7Days {
		t.Errorf("after one cycle = %v, want 7 days", got)
	}
	if s.GetTimeRange() != models.TimeRange7Days {
		t.Error("GetTimeRange should reflect the cycled range")
	}

	s.CycleTimeRange()
	s.CycleTimeRange()
	if got := s.CycleTimeRange(); got != models.TimeRange24Hours {
		t.Errorf("cycle should wrap back to 24 hours, got %v", got)
	}
}

func TestState_LastUpdated(t *testing.T) {
	s := NewState()

	before := s.GetLastUpdated()
	time.Sleep(time.Millisecond)
	s.SetSummary(models.NewSummary())

	if !s.GetLastUpdated().After(before) {
		t.Error("LastUpdated should advance on SetSummary")
	}
	if s.TimeSinceUpdate() == 0 {
		t.Error("TimeSinceUpdate should be > 0")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
