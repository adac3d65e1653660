package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokenmeter/tokenmeter-tui/internal/models"
	"github.com/tokenmeter/tokenmeter-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// recentRecordsLimit caps the recent-calls list on the dashboard.
	recentRecordsLimit = 50
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager, timeRange models.TimeRange) tea.Cmd {
	return tea.Batch(
		loadSummaryCmd(mgr),
		loadHistoryCmd(mgr, timeRange),
	)
}

// loadSummaryCmd returns a command that loads the running summary and
// recent records.
func loadSummaryCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		summary := mgr.GetSummary()
		stats := mgr.GetStats()

		records, err := mgr.GetRecentRecords(recentRecordsLimit)
		if err != nil {
			return ErrorMsg{Error: err, Context: "loading recent records"}
		}

		return SummaryLoadedMsg{
			Summary: summary,
			Records: records,
			Stats:   stats,
		}
	}
}

// loadHistoryCmd returns a command that loads hourly aggregates.
func loadHistoryCmd(mgr *services.Manager, timeRange models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		hourly, err := mgr.GetHourlyStats(timeRange)
		if err != nil {
			return HistoryLoadedMsg{TimeRange: timeRange, Error: err}
		}
		totals, err := mgr.GetTotalStats()
		if err != nil {
			return HistoryLoadedMsg{TimeRange: timeRange, Error: err}
		}
		return HistoryLoadedMsg{
			TimeRange:   timeRange,
			HourlyStats: hourly,
			TotalStats:  totals,
		}
	}
}

// loadStatsCmd returns a command that loads statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return StatsLoadedMsg{Stats: mgr.GetStats()}
	}
}

// resetSessionCmd returns a command that resets the running aggregate.
func resetSessionCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.ResetSession()
		return SessionResetMsg{}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// LoadInitialData returns a command that loads all initial data.
func (c *Commands) LoadInitialData(timeRange models.TimeRange) tea.Cmd {
	return loadInitialData(c.manager, timeRange)
}

// LoadSummary returns a command that loads the running summary.
func (c *Commands) LoadSummary() tea.Cmd {
	return loadSummaryCmd(c.manager)
}

// LoadHistory returns a command that loads hourly history.
func (c *Commands) LoadHistory(timeRange models.TimeRange) tea.Cmd {
	return loadHistoryCmd(c.manager, timeRange)
}

// LoadStats returns a command that loads statistics.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.manager)
}

// ResetSession returns a command that resets the running aggregate.
func (c *Commands) ResetSession() tea.Cmd {
	return resetSessionCmd(c.manager)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}
