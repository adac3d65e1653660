// Package models defines data structures and domain types.
package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Hours returns the number of hours covered by the range (0 = unlimited).
func (t TimeRange) Hours() int {
	switch t {
	case TimeRange24Hours:
		return 24
	case TimeRange7Days:
		return 7 * 24
	case TimeRange30Days:
		return 30 * 24
	case TimeRangeAllTime:
		return 0
	default:
		return 30 * 24
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// HourlyStats represents usage statistics grouped by hour.
type HourlyStats struct {
	Hour                  time.Time
	CallCount             int64
	TotalPromptTokens     int64
	TotalCompletionTokens int64
	UniqueSources         int64
}

// TotalTokens returns the derived token total for the hour.
func (h HourlyStats) TotalTokens() int64 {
	return h.TotalPromptTokens + h.TotalCompletionTokens
}

// TotalStats represents overall aggregated statistics over stored records.
type TotalStats struct {
	CallCount             int64
	TotalPromptTokens     int64
	TotalCompletionTokens int64
	UniqueSources         int64
	UniqueModels          int64
	UniqueSessions        int64
	FirstRecord           time.Time
	LastRecord            time.Time
}

// TotalTokens returns the derived overall token total.
func (t TotalStats) TotalTokens() int64 {
	return t.TotalPromptTokens + t.TotalCompletionTokens
}
