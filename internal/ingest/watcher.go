// Package ingest tails a JSONL usage log and feeds records into a sink.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tokenmeter/tokenmeter-tui/internal/logger"
	"github.com/tokenmeter/tokenmeter-tui/internal/models"
)

// RecordSink receives records decoded from the usage log.
type RecordSink interface {
	Add(record models.UsageRecord) error
}

// Event represents a watcher event.
type Event struct {
	Type     EventType
	Error    error
	Ingested int
}

// EventType defines the type of watcher event.
type EventType int

const (
	EventRecordsIngested EventType = iota
	EventError
)

// Watcher tails a JSONL file of usage records. Each line is a JSON-encoded
// record; valid lines are forwarded to the sink, malformed lines are
// reported and skipped. Lines are consumed exactly once: the watcher keeps
// a byte offset and resumes from it on each change. Truncation rewinds the
// offset to zero.
type Watcher struct {
	mu            sync.Mutex
	filePath      string
	offset        int64
	sink          RecordSink
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a watcher for the given JSONL file and starts tailing it.
// Records already present in the file are ingested immediately.
func New(filePath string, sink RecordSink) (*Watcher, error) {
	if filePath == "" {
		return nil, fmt.Errorf("usage log path is required")
	}

	w := &Watcher{
		filePath:  filePath,
		sink:      sink,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Ingest any existing content before watching
	if err := w.consume(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read usage log: %w", err)
	}

	if err := w.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	return w, nil
}

// Events returns the event channel for subscribing to ingest activity.
func (w *Watcher) Events() <-chan Event {
	return w.eventChan
}

// Path returns the watched file path.
func (w *Watcher) Path() string {
	return w.filePath
}

// Offset returns the current byte offset into the watched file.
func (w *Watcher) Offset() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.offset
}

// consume reads new complete lines past the current offset and forwards
// decoded records to the sink.
func (w *Watcher) consume() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	file, err := os.Open(w.filePath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("failed to close usage log", "error", closeErr)
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < w.offset {
		// File was truncated or rotated, start over
		logger.Warn("usage log truncated, rewinding", "path", w.filePath)
		w.offset = 0
	}
	if info.Size() == w.offset {
		return nil
	}

	if _, err := file.Seek(w.offset, io.SeekStart); err != nil {
		return err
	}

	ingested := 0
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			// Partial last line, wait for the writer to finish it
			break
		}
		if err != nil {
			return err
		}
		w.offset += int64(len(line))

		record, decodeErr := decodeLine(line)
		if decodeErr != nil {
			w.sendEvent(Event{Type: EventError, Error: decodeErr})
			continue
		}
		if record == nil {
			continue
		}
		if sinkErr := w.sink.Add(*record); sinkErr != nil {
			w.sendEvent(Event{Type: EventError, Error: sinkErr})
			continue
		}
		ingested++
	}

	if ingested > 0 {
		w.sendEvent(Event{Type: EventRecordsIngested, Ingested: ingested})
	}
	return nil
}

// wireRecord is the JSONL producer format. Producers write camelCase keys;
// the stored models.UsageRecord is never decoded directly so its snake_case
// tags stay a storage concern.
type wireRecord struct {
	Timestamp        time.Time      `json:"timestamp"`
	Source           string         `json:"source"`
	Model            string         `json:"model"`
	SessionID        string         `json:"sessionId"`
	Metadata         map[string]any `json:"metadata"`
	PromptTokens     int64          `json:"promptTokens"`
	CompletionTokens int64          `json:"completionTokens"`
}

// decodeLine parses one JSONL line into a record. Blank lines return nil.
// Unknown keys are rejected so a mis-keyed producer surfaces as an error
// event instead of a silently zeroed record.
func decodeLine(line []byte) (*models.UsageRecord, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var wire wireRecord
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("malformed usage log line: %w", err)
	}

	record := models.UsageRecord{
		Timestamp:        wire.Timestamp,
		Source:           wire.Source,
		Model:            wire.Model,
		SessionID:        wire.SessionID,
		Metadata:         wire.Metadata,
		PromptTokens:     wire.PromptTokens,
		CompletionTokens: wire.CompletionTokens,
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid usage log line: %w", err)
	}
	return &record, nil
}

// startWatcher starts the file system watcher.
func (w *Watcher) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	// Watch the directory (to catch file creation/rotation)
	dir := filepath.Dir(w.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go w.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (w *Watcher) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.scheduleConsume(debounceInterval)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendEvent(Event{Type: EventError, Error: err})

		case <-w.stopChan:
			return
		}
	}
}

// scheduleConsume (re)arms the debounce timer. The timer is shared with
// Close, so access goes through the mutex.
func (w *Watcher) scheduleConsume(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(delay, func() {
		if err := w.consume(); err != nil && !os.IsNotExist(err) {
			w.sendEvent(Event{Type: EventError, Error: err})
		}
	})
}

// sendEvent sends an event to the event channel non-blocking.
func (w *Watcher) sendEvent(event Event) {
	select {
	case w.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-w.eventChan:
		default:
		}
		select {
		case w.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (w *Watcher) Close() error {
	close(w.stopChan)

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()

	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
