// Package services provides service orchestration for the TUI.
package services

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tokenmeter/tokenmeter-tui/internal/config"
	"github.com/tokenmeter/tokenmeter-tui/internal/db"
	"github.com/tokenmeter/tokenmeter-tui/internal/ingest"
	"github.com/tokenmeter/tokenmeter-tui/internal/logger"
	"github.com/tokenmeter/tokenmeter-tui/internal/models"
	"github.com/tokenmeter/tokenmeter-tui/internal/tracker"
)

type (
	// SummaryUpdatedEvent is emitted when the running summary changes.
	SummaryUpdatedEvent struct {
		Summary  models.UsageSummary
		Ingested int
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// StatsEvent is emitted when global statistics change.
	StatsEvent struct {
		CallCount      int64
		TotalTokens    int64
		UniqueSources  int64
		UniqueModels   int64
		UniqueSessions int64
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SummaryUpdatedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()          {}
func (StatsEvent) isServiceEvent()          {}

// Manager orchestrates the tracker, database and log watcher.
type Manager struct {
	mu          sync.RWMutex
	tracker     *tracker.Tracker
	watcher     *ingest.Watcher
	database    *db.DB
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		stopChan: make(chan struct{}),
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.pruneHistory(cfg.RetentionDays)

	m.tracker = tracker.New(
		tracker.WithDatabase(m.database),
		tracker.WithAlertThreshold(cfg.AlertThreshold),
	)

	m.watcher, err = ingest.New(cfg.UsageLogPath, m.tracker)
	if err != nil {
		if closeErr := m.database.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to start log watcher: %w (database close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to start log watcher: %w", err)
	}

	go m.routeEvents()

	return m, nil
}

// pruneHistory enforces the retention window on stored records. A
// retention of 0 keeps everything.
func (m *Manager) pruneHistory(retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	pruned, err := m.database.PruneBefore(cutoff)
	if err != nil {
		logger.Error("failed to prune usage history", "error", err)
		return
	}
	if pruned > 0 {
		logger.Info("pruned usage history", "records", pruned, "cutoff", cutoff)
		if err := m.database.Vacuum(); err != nil {
			logger.Error("failed to vacuum database", "error", err)
		}
	}
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.watcher.Events():
			m.handleWatcherEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleWatcherEvent converts and broadcasts watcher events.
func (m *Manager) handleWatcherEvent(event ingest.Event) {
	switch event.Type {
	case ingest.EventRecordsIngested:
		m.broadcast(SummaryUpdatedEvent{
			Summary:  m.tracker.Summary(),
			Ingested: event.Ingested,
		})

	case ingest.EventError:
		m.broadcast(ErrorEvent{
			Service: "ingest",
			Error:   event.Error,
		})
	}
}

// Record registers a usage observation directly, bypassing the log file.
// The new running summary is broadcast to subscribers.
func (m *Manager) Record(source string, promptTokens, completionTokens int64, opts ...models.RecordOption) (models.UsageRecord, error) {
	record, err := m.tracker.Record(source, promptTokens, completionTokens, opts...)
	if err != nil {
		return models.UsageRecord{}, err
	}

	m.broadcast(SummaryUpdatedEvent{
		Summary:  m.tracker.Summary(),
		Ingested: 1,
	})
	return record, nil
}

// GetSummary returns the running session summary.
func (m *Manager) GetSummary() models.UsageSummary {
	return m.tracker.Summary()
}

// GetRecentRecords returns the most recent persisted records.
func (m *Manager) GetRecentRecords(limit int) ([]models.UsageRecord, error) {
	return m.database.GetRecentRecords(limit)
}

// GetHourlyStats returns per-hour aggregates for the given time range.
func (m *Manager) GetHourlyStats(timeRange models.TimeRange) ([]models.HourlyStats, error) {
	return m.database.GetHourlyStats(timeRange.Hours())
}

// GetTotalStats returns all-time aggregates from the database.
func (m *Manager) GetTotalStats() (*models.TotalStats, error) {
	return m.database.GetTotalStats()
}

// GetStats returns aggregated statistics for the status bar.
func (m *Manager) GetStats() StatsEvent {
	summary := m.tracker.Summary()

	return StatsEvent{
		CallCount:      summary.CallCount,
		TotalTokens:    summary.TotalTokens(),
		UniqueSources:  int64(len(summary.BySource)),
		UniqueModels:   int64(len(summary.ByModel)),
		UniqueSessions: int64(len(summary.BySession)),
	}
}

// ResetSession starts a fresh aggregation epoch. Persisted history is kept.
func (m *Manager) ResetSession() {
	m.tracker.Reset()
	m.broadcast(SummaryUpdatedEvent{Summary: m.tracker.Summary()})
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Tracker returns the running aggregator.
func (m *Manager) Tracker() *tracker.Tracker {
	return m.tracker
}

// Watcher returns the usage log watcher.
func (m *Manager) Watcher() *ingest.Watcher {
	return m.watcher
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.watcher.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// InitialState returns the initial summary and stats for TUI initialization.
func (m *Manager) InitialState() (models.UsageSummary, StatsEvent) {
	return m.GetSummary(), m.GetStats()
}
