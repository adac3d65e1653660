package app

import (
	"time"

	"github.com/tokenmeter/tokenmeter-tui/internal/models"
	"github.com/tokenmeter/tokenmeter-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// InitialLoadCompleteMsg signals that initial data loading is complete.
type InitialLoadCompleteMsg struct{}

// SummaryLoadedMsg contains the running summary and recent records.
type SummaryLoadedMsg struct {
	Summary models.UsageSummary
	Records []models.UsageRecord
	Stats   services.StatsEvent
}

// HistoryLoadedMsg contains hourly aggregates for the selected time range.
type HistoryLoadedMsg struct {
	TimeRange   models.TimeRange
	HourlyStats []models.HourlyStats
	TotalStats  *models.TotalStats
	Error       error
}

// StatsLoadedMsg contains loaded statistics.
type StatsLoadedMsg struct {
	Stats services.StatsEvent
}

// TimeRangeChangedMsg signals that the history time range was cycled.
type TimeRangeChangedMsg struct {
	TimeRange models.TimeRange
}

// SessionResetMsg signals that the running aggregate was reset.
type SessionResetMsg struct{}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "summary", "history"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text string
}
