package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tokenmeter/tokenmeter-tui/internal/logger"
	"github.com/tokenmeter/tokenmeter-tui/internal/models"
)

// InsertUsageRecord appends a usage record to the database and sets its ID.
func (db *DB) InsertUsageRecord(record *models.UsageRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO usage_records (
			timestamp, source, model, session_id, prompt_tokens, completion_tokens, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := record.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var metadata sql.NullString
	if len(record.Metadata) > 0 {
		data, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.Format("2006-01-02 15:04:05"),
		record.Source,
		nullString(record.Model),
		nullString(record.SessionID),
		record.PromptTokens,
		record.CompletionTokens,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		record.ID = id
	}

	return nil
}

// GetRecentRecords returns the most recent usage records, newest first.
func (db *DB) GetRecentRecords(limit int) ([]models.UsageRecord, error) {
	query := `
		SELECT id, timestamp, source, model, session_id,
			   prompt_tokens, completion_tokens, metadata
		FROM usage_records
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

// GetAllRecords returns every stored usage record in insertion order.
func (db *DB) GetAllRecords() ([]models.UsageRecord, error) {
	query := `
		SELECT id, timestamp, source, model, session_id,
			   prompt_tokens, completion_tokens, metadata
		FROM usage_records
		ORDER BY id ASC
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	for rows.Next() {
		var record models.UsageRecord
		var model, sessionID, metadata sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.Timestamp,
			&record.Source,
			&model,
			&sessionID,
			&record.PromptTokens,
			&record.CompletionTokens,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}

		record.Model = model.String
		record.SessionID = sessionID.String
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &record.Metadata); err != nil {
				logger.Warn("failed to decode record metadata", "id", record.ID, "error", err)
			}
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetSummary aggregates all stored records into a usage summary. The result
// agrees with models.Summarize over the same records.
func (db *DB) GetSummary() (models.UsageSummary, error) {
	records, err := db.GetAllRecords()
	if err != nil {
		return models.UsageSummary{}, err
	}
	return models.Summarize(records), nil
}

// GetHourlyStats returns aggregated statistics grouped by hour. A zero or
// negative hours value returns all available history.
func (db *DB) GetHourlyStats(hours int) ([]models.HourlyStats, error) {
	query := `
		SELECT
			strftime('%Y-%m-%d %H:00:00', timestamp) as hour,
			COUNT(*) as call_count,
			COALESCE(SUM(prompt_tokens), 0) as total_prompt,
			COALESCE(SUM(completion_tokens), 0) as total_completion,
			COUNT(DISTINCT source) as unique_sources
		FROM usage_records
		WHERE ?1 <= 0 OR timestamp >= datetime('now', '-' || ?1 || ' hours')
		GROUP BY hour
		ORDER BY hour ASC
	`

	rows, err := db.QueryContext(context.Background(), query, hours)
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly stats: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var stats []models.HourlyStats
	for rows.Next() {
		var s models.HourlyStats
		var hourStr string

		err := rows.Scan(
			&hourStr,
			&s.CallCount,
			&s.TotalPromptTokens,
			&s.TotalCompletionTokens,
			&s.UniqueSources,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hourly stats: %w", err)
		}

		s.Hour, _ = time.Parse("2006-01-02 15:04:05", hourStr)
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetTotalStats returns overall aggregated statistics.
func (db *DB) GetTotalStats() (*models.TotalStats, error) {
	query := `
		SELECT
			COUNT(*) as call_count,
			COALESCE(SUM(prompt_tokens), 0) as total_prompt,
			COALESCE(SUM(completion_tokens), 0) as total_completion,
			COUNT(DISTINCT source) as unique_sources,
			COUNT(DISTINCT model) as unique_models,
			COUNT(DISTINCT session_id) as unique_sessions,
			COALESCE(MIN(timestamp), ''),
			COALESCE(MAX(timestamp), '')
		FROM usage_records
	`

	var stats models.TotalStats
	var first, last string
	err := db.QueryRowContext(context.Background(), query).Scan(
		&stats.CallCount,
		&stats.TotalPromptTokens,
		&stats.TotalCompletionTokens,
		&stats.UniqueSources,
		&stats.UniqueModels,
		&stats.UniqueSessions,
		&first,
		&last,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query total stats: %w", err)
	}

	stats.FirstRecord, _ = time.Parse("2006-01-02 15:04:05", first)
	stats.LastRecord, _ = time.Parse("2006-01-02 15:04:05", last)

	return &stats, nil
}

// PruneBefore deletes records older than the cutoff and returns the number
// of rows removed.
func (db *DB) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(),
		"DELETE FROM usage_records WHERE timestamp < ?",
		cutoff.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune records: %w", err)
	}
	return result.RowsAffected()
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
