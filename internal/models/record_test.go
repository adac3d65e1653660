package models

import (
	"errors"
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	r, err := NewRecord("agent", 10, 5)
	if err != nil {
		t.Fatalf("NewRecord() failed: %v", err)
	}

	if r.Source != "agent" {
		t.Errorf("Source = %q, want %q", r.Source, "agent")
	}
	if r.PromptTokens != 10 || r.CompletionTokens != 5 {
		t.Errorf("tokens = (%d, %d), want (10, 5)", r.PromptTokens, r.CompletionTokens)
	}
	if r.TotalTokens() != 15 {
		t.Errorf("TotalTokens() = %d, want 15", r.TotalTokens())
	}
	if r.Timestamp.IsZero() {
		t.Error("Timestamp should default to capture time")
	}
	if r.Model != "" || r.SessionID != "" || r.Metadata != nil {
		t.Error("optional fields should be zero by default")
	}
}

func TestNewRecord_Options(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	md := map[string]any{"request_id": "req-1"}

	r, err := NewRecord("agent", 1, 2,
		WithModel("claude-3-opus"),
		WithSession("sess-abc"),
		WithTimestamp(ts),
		WithMetadata(md),
	)
	if err != nil {
		t.Fatalf("NewRecord() failed: %v", err)
	}

	if r.Model != "claude-3-opus" {
		t.Errorf("Model = %q, want %q", r.Model, "claude-3-opus")
	}
	if r.SessionID != "sess-abc" {
		t.Errorf("SessionID = %q, want %q", r.SessionID, "sess-abc")
	}
	if !r.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", r.Timestamp, ts)
	}
	if r.Metadata["request_id"] != "req-1" {
		t.Errorf("Metadata = %v, want request_id set", r.Metadata)
	}

	// The record must not observe later changes to the caller's map.
	md["request_id"] = "mutated"
	if r.Metadata["request_id"] != "req-1" {
		t.Error("Metadata should be copied, not aliased")
	}
}

func TestNewRecord_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		prompt     int64
		completion int64
	}{
		{"negative prompt", "agent", -1, 0},
		{"negative completion", "agent", 0, -1},
		{"empty source", "", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.source, tt.prompt, tt.completion)
			if err == nil {
				t.Fatal("NewRecord() should fail")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	good := UsageRecord{Source: "agent", PromptTokens: 1, CompletionTokens: 1}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate() failed for valid record: %v", err)
	}

	bad := UsageRecord{Source: "agent", PromptTokens: -3}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Validate() = %v, want ErrInvalidInput", err)
	}
}
