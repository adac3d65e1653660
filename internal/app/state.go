// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/tokenmeter/tokenmeter-tui/internal/models"
	"github.com/tokenmeter/tokenmeter-tui/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Records bool
	History bool
}

// State holds shared application data consumed by the tabs.
type State struct {
	mu sync.RWMutex

	Summary       models.UsageSummary
	RecentRecords []models.UsageRecord
	Stats         *services.StatsEvent
	TotalStats    *models.TotalStats
	HourlyStats   []models.HourlyStats
	TimeRange     models.TimeRange

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		Summary:       models.NewSummary(),
		RecentRecords: make([]models.UsageRecord, 0),
		TimeRange:     models.TimeRange24Hours,
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "records":
		s.Loading.Records = loading
	case "history":
		s.Loading.History = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Records || s.Loading.History
}

// IsHistoryLoading returns true if history data is being reloaded.
func (s *State) IsHistoryLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.History
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// SetSummary updates the running summary.
func (s *State) SetSummary(summary models.UsageSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Summary = summary
	s.LastUpdated = time.Now()
}

// GetSummary returns the current summary snapshot.
func (s *State) GetSummary() models.UsageSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Summary
}

// SetRecentRecords updates the recent records list.
func (s *State) SetRecentRecords(records []models.UsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RecentRecords = records
	s.LastUpdated = time.Now()
}

// GetRecentRecords returns a copy of the recent records.
func (s *State) GetRecentRecords() []models.UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.UsageRecord, len(s.RecentRecords))
	copy(records, s.RecentRecords)
	return records
}

// SetStats updates the statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
}

// GetStats returns the current statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// SetTotalStats updates the all-time statistics.
func (s *State) SetTotalStats(stats *models.TotalStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalStats = stats
}

// GetTotalStats returns the all-time statistics.
func (s *State) GetTotalStats() *models.TotalStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TotalStats
}

// SetHourlyStats updates the hourly history for the current time range.
func (s *State) SetHourlyStats(stats []models.HourlyStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HourlyStats = stats
}

// GetHourlyStats returns a copy of the hourly history.
func (s *State) GetHourlyStats() []models.HourlyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]models.HourlyStats, len(s.HourlyStats))
	copy(stats, s.HourlyStats)
	return stats
}

// GetTimeRange returns the selected history time range.
func (s *State) GetTimeRange() models.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TimeRange
}

// CycleTimeRange advances to the next history time range and returns it.
func (s *State) CycleTimeRange() models.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TimeRange = s.TimeRange.Next()
	return s.TimeRange
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
