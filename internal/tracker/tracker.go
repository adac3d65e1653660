// Package tracker provides the running token-usage aggregator.
package tracker

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/tokenmeter/tokenmeter-tui/internal/db"
	"github.com/tokenmeter/tokenmeter-tui/internal/logger"
	"github.com/tokenmeter/tokenmeter-tui/internal/models"
)

// NotifyFunc sends a desktop notification. Injectable for tests.
type NotifyFunc func(title, message string) error

// Tracker accumulates usage records and maintains a running summary.
// Record construction itself needs no shared state; the append and fold are
// serialized under a mutex so the running summary always equals the
// sequential fold of the observed multiset, whatever the arrival order.
type Tracker struct {
	mu      sync.RWMutex
	records []models.UsageRecord
	summary models.UsageSummary

	database *db.DB

	alertThreshold int64
	alerted        bool
	notify         NotifyFunc
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithDatabase attaches a database; every recorded observation is appended
// to it.
func WithDatabase(database *db.DB) Option {
	return func(t *Tracker) { t.database = database }
}

// WithAlertThreshold enables a one-shot desktop notification when total
// tokens cross the threshold. Zero disables alerting.
func WithAlertThreshold(tokens int64) Option {
	return func(t *Tracker) { t.alertThreshold = tokens }
}

// WithNotifier overrides the desktop notification function.
func WithNotifier(notify NotifyFunc) Option {
	return func(t *Tracker) { t.notify = notify }
}

// New creates a tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		summary: models.NewSummary(),
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record constructs a new observation and folds it into the running
// aggregate. Validation errors surface synchronously; nothing is recorded
// on failure.
func (t *Tracker) Record(source string, promptTokens, completionTokens int64, opts ...models.RecordOption) (models.UsageRecord, error) {
	record, err := models.NewRecord(source, promptTokens, completionTokens, opts...)
	if err != nil {
		return models.UsageRecord{}, err
	}
	if err := t.Add(record); err != nil {
		return models.UsageRecord{}, err
	}
	return record, nil
}

// Add folds an already-constructed record into the running aggregate.
func (t *Tracker) Add(record models.UsageRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	if t.database != nil {
		if err := t.database.InsertUsageRecord(&record); err != nil {
			return fmt.Errorf("failed to persist record: %w", err)
		}
	}

	t.mu.Lock()
	t.records = append(t.records, record)
	t.summary = t.summary.Fold(record)
	total := t.summary.TotalTokens()
	shouldAlert := t.alertThreshold > 0 && !t.alerted && total >= t.alertThreshold
	if shouldAlert {
		t.alerted = true
	}
	t.mu.Unlock()

	if shouldAlert {
		t.sendAlert(total)
	}
	return nil
}

func (t *Tracker) sendAlert(total int64) {
	title := "Token usage threshold reached"
	message := fmt.Sprintf("Total usage is %d tokens (threshold %d)", total, t.alertThreshold)
	if err := t.notify(title, message); err != nil {
		logger.Warn("failed to send usage notification", "error", err)
	}
}

// Summary returns a snapshot of the running aggregate. The snapshot equals
// models.Summarize over the records observed so far.
func (t *Tracker) Summary() models.UsageSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summary.Merge(models.NewSummary())
}

// Records returns a copy of the observed records in arrival order.
func (t *Tracker) Records() []models.UsageRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	records := make([]models.UsageRecord, len(t.records))
	copy(records, t.records)
	return records
}

// Count returns the number of observed records.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Reset starts a new epoch: records and summary are cleared and the
// threshold alert re-arms. Persisted records are unaffected.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = nil
	t.summary = models.NewSummary()
	t.alerted = false
}
