package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tokenmeter/tokenmeter-tui/internal/models"
)

type captureSink struct {
	mu      sync.Mutex
	records []models.UsageRecord
}

func (s *captureSink) Add(record models.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *captureSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *captureSink) snapshot() []models.UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]models.UsageRecord, len(s.records))
	copy(records, s.records)
	return records
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNew_IngestsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")
	content := `{"source":"api","promptTokens":10,"completionTokens":5,"model":"gpt-4o"}
{"source":"cli","promptTokens":3,"completionTokens":2}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	sink := &captureSink{}
	w, err := New(path, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if sink.len() != 2 {
		t.Fatalf("ingested %d records, want 2", sink.len())
	}
	records := sink.snapshot()
	if records[0].Source != "api" || records[0].Model != "gpt-4o" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[0].Timestamp.IsZero() {
		t.Error("timestamp not defaulted on decoded record")
	}
	if records[1].Source != "cli" || records[1].TotalTokens() != 5 {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestNew_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")

	sink := &captureSink{}
	w, err := New(path, sink)
	if err != nil {
		t.Fatalf("New failed for missing file: %v", err)
	}
	defer w.Close()

	if sink.len() != 0 {
		t.Errorf("ingested %d records from missing file, want 0", sink.len())
	}
}

func TestWatcher_IngestsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to create log: %v", err)
	}

	sink := &captureSink{}
	w, err := New(path, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatalf("failed to open log for append: %v", err)
	}
	if _, err := file.WriteString(`{"source":"api","promptTokens":7,"completionTokens":1}` + "\n"); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	file.Close()

	waitFor(t, 2*time.Second, func() bool { return sink.len() == 1 })

	records := sink.snapshot()
	if records[0].Source != "api" || records[0].PromptTokens != 7 {
		t.Errorf("appended record = %+v", records[0])
	}
}

func TestWatcher_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")
	content := `{"source":"api","promptTokens":10,"completionTokens":5}
not json at all
{"source":"api","promptTokens":-1,"completionTokens":0}

{"source":"cli","promptTokens":1,"completionTokens":1}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	sink := &captureSink{}
	w, err := New(path, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if sink.len() != 2 {
		t.Fatalf("ingested %d records, want 2 (malformed and invalid lines skipped)", sink.len())
	}

	// Two error events, one per bad line
	errorEvents := 0
	for i := 0; i < 2; i++ {
		select {
		case event := <-w.Events():
			if event.Type == EventError {
				errorEvents++
			}
		case <-time.After(time.Second):
		}
	}
	if errorEvents != 2 {
		t.Errorf("got %d error events, want 2", errorEvents)
	}
}

func TestDecodeLine_ProducerFormat(t *testing.T) {
	line := []byte(`{"source":"cli","promptTokens":3,"completionTokens":2,"model":"gpt-4o","sessionId":"s1","metadata":{"env":"ci"}}`)

	record, err := decodeLine(line)
	if err != nil {
		t.Fatalf("decodeLine failed: %v", err)
	}
	if record.Source != "cli" || record.Model != "gpt-4o" || record.SessionID != "s1" {
		t.Errorf("record = %+v", record)
	}
	if record.PromptTokens != 3 || record.CompletionTokens != 2 {
		t.Errorf("tokens = %d/%d, want 3/2", record.PromptTokens, record.CompletionTokens)
	}
	if record.Metadata["env"] != "ci" {
		t.Errorf("metadata = %v", record.Metadata)
	}
	if record.Timestamp.IsZero() {
		t.Error("timestamp not defaulted")
	}
}

func TestDecodeLine_UnknownKeysRejected(t *testing.T) {
	// A mis-keyed producer must surface an error, never a zeroed record.
	lines := [][]byte{
		[]byte(`{"source":"cli","prompt_tokens":3,"completion_tokens":2}`),
		[]byte(`{"source":"cli","promptTokens":3,"completionTokns":2}`),
	}
	for _, line := range lines {
		if record, err := decodeLine(line); err == nil {
			t.Errorf("decodeLine(%s) = %+v, want error", line, record)
		}
	}
}

func TestDecodeLine_NegativeTokens(t *testing.T) {
	_, err := decodeLine([]byte(`{"source":"cli","promptTokens":-1,"completionTokens":0}`))
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("decodeLine error = %v, want ErrInvalidInput", err)
	}
}

func TestDecodeLine_Blank(t *testing.T) {
	record, err := decodeLine([]byte("  \n"))
	if record != nil || err != nil {
		t.Errorf("decodeLine blank = (%v, %v), want (nil, nil)", record, err)
	}
}

func TestWatcher_PartialLineNotConsumed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")
	// No trailing newline, the writer has not finished this line
	if err := os.WriteFile(path, []byte(`{"source":"api","promptTokens":1`), 0600); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	sink := &captureSink{}
	w, err := New(path, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if sink.len() != 0 {
		t.Errorf("ingested %d records from partial line, want 0", sink.len())
	}
	if w.Offset() != 0 {
		t.Errorf("Offset = %d, want 0 for unconsumed partial line", w.Offset())
	}
}

func TestWatcher_TruncationRewinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")
	content := `{"source":"api","promptTokens":10,"completionTokens":5}
{"source":"api","promptTokens":20,"completionTokens":5}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	sink := &captureSink{}
	w, err := New(path, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if sink.len() != 2 {
		t.Fatalf("ingested %d records, want 2", sink.len())
	}

	// Rotate: replace with a shorter file
	if err := os.WriteFile(path, []byte(`{"source":"cli","promptTokens":1,"completionTokens":1}`+"\n"), 0600); err != nil {
		t.Fatalf("failed to rewrite log: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return sink.len() == 3 })

	records := sink.snapshot()
	if records[2].Source != "cli" {
		t.Errorf("record after rotation = %+v", records[2])
	}
}

func TestWatcher_CloseWhileAppending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to create log: %v", err)
	}

	sink := &captureSink{}
	w, err := New(path, sink)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Keep the debounce timer being re-armed while Close runs
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			file, openErr := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
			if openErr != nil {
				t.Error(openErr)
				return
			}
			if _, writeErr := file.WriteString(`{"source":"api","promptTokens":1,"completionTokens":1}` + "\n"); writeErr != nil {
				t.Error(writeErr)
			}
			file.Close()
		}
	}()

	time.Sleep(5 * time.Millisecond)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	<-done
}
