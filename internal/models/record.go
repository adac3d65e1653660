// Package models defines data structures and domain types.
package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is returned when a usage record is constructed with a
// negative token count or an empty source.
var ErrInvalidInput = errors.New("invalid input")

// UsageRecord represents one observed LLM call. Records are immutable value
// objects once constructed; aggregation never mutates them.
type UsageRecord struct {
	Timestamp        time.Time      `json:"timestamp"`
	Source           string         `json:"source"`
	Model            string         `json:"model,omitempty"`
	SessionID        string         `json:"session_id,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	PromptTokens     int64          `json:"prompt_tokens"`
	CompletionTokens int64          `json:"completion_tokens"`
	ID               int64          `json:"-"`
}

// TotalTokens returns the derived total. It is never stored so the
// prompt+completion invariant cannot drift.
func (r UsageRecord) TotalTokens() int64 {
	return r.PromptTokens + r.CompletionTokens
}

// RecordOption customizes optional fields of a new usage record.
type RecordOption func(*UsageRecord)

// WithModel sets the model identifier.
func WithModel(model string) RecordOption {
	return func(r *UsageRecord) { r.Model = model }
}

// WithSession sets the session grouping key.
func WithSession(sessionID string) RecordOption {
	return func(r *UsageRecord) { r.SessionID = sessionID }
}

// WithTimestamp overrides the capture-time default.
func WithTimestamp(ts time.Time) RecordOption {
	return func(r *UsageRecord) { r.Timestamp = ts }
}

// WithMetadata attaches opaque metadata. The map is copied so the caller
// cannot mutate the record afterwards.
func WithMetadata(md map[string]any) RecordOption {
	return func(r *UsageRecord) {
		if len(md) == 0 {
			return
		}
		r.Metadata = make(map[string]any, len(md))
		for k, v := range md {
			r.Metadata[k] = v
		}
	}
}

// NewRecord constructs a usage record. Negative token counts and empty
// sources are rejected, never clamped. Timestamp defaults to the current
// time unless WithTimestamp is given.
func NewRecord(source string, promptTokens, completionTokens int64, opts ...RecordOption) (UsageRecord, error) {
	if source == "" {
		return UsageRecord{}, fmt.Errorf("%w: source must not be empty", ErrInvalidInput)
	}
	if promptTokens < 0 {
		return UsageRecord{}, fmt.Errorf("%w: prompt tokens must not be negative, got %d", ErrInvalidInput, promptTokens)
	}
	if completionTokens < 0 {
		return UsageRecord{}, fmt.Errorf("%w: completion tokens must not be negative, got %d", ErrInvalidInput, completionTokens)
	}

	r := UsageRecord{
		Source:           source,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	return r, nil
}

// Validate reports whether a record decoded from an external source (JSONL
// log, database row) satisfies the construction invariants.
func (r UsageRecord) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("%w: source must not be empty", ErrInvalidInput)
	}
	if r.PromptTokens < 0 {
		return fmt.Errorf("%w: prompt tokens must not be negative, got %d", ErrInvalidInput, r.PromptTokens)
	}
	if r.CompletionTokens < 0 {
		return fmt.Errorf("%w: completion tokens must not be negative, got %d", ErrInvalidInput, r.CompletionTokens)
	}
	return nil
}
