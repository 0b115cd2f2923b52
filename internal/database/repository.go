package database

import (
	"encoding/json"
	"fmt"

	"ecstasy/internal/models"
)

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// UpsertUserStats writes a user's lifetime totals. The in-memory
// snapshot is authoritative, so a conflict overwrites the stored row.
func (r *Repository) UpsertUserStats(userID string, totalMessages int64, totalVoiceSeconds float64) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO user_stats (user_id, total_messages, total_voice_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			total_messages = EXCLUDED.total_messages,
			total_voice_time = EXCLUDED.total_voice_time`,
		userID, totalMessages, totalVoiceSeconds)
	if err != nil {
		return fmt.Errorf("failed to upsert user stats: %w", err)
	}
	return nil
}

// UpsertDailyStats writes one (user, date) row with its JSON-encoded
// channel counts, overwriting on conflict.
func (r *Repository) UpsertDailyStats(userID, date string, messages int64, voiceSeconds float64, channelsJSON string) error {
	_, err := r.db.conn.Exec(`
		INSERT INTO daily_stats (user_id, date, messages, voice_time, channels)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE SET
			messages = EXCLUDED.messages,
			voice_time = EXCLUDED.voice_time,
			channels = EXCLUDED.channels`,
		userID, date, messages, voiceSeconds, channelsJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	return nil
}

// LoadUserStats reads every user_stats row for cold-start rehydration.
func (r *Repository) LoadUserStats() ([]models.UserStatsRow, error) {
	rows, err := r.db.conn.Query("SELECT user_id, total_messages, total_voice_time FROM user_stats")
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}
	defer rows.Close()

	var result []models.UserStatsRow
	for rows.Next() {
		var row models.UserStatsRow
		if err := rows.Scan(&row.UserID, &row.TotalMessages, &row.TotalVoiceSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan user stats row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user stats rows: %w", err)
	}

	return result, nil
}

// LoadDailyStats reads every daily_stats row for cold-start
// rehydration, decoding the channel counts column.
func (r *Repository) LoadDailyStats() ([]models.DailyStatsRow, error) {
	rows, err := r.db.conn.Query("SELECT user_id, date, messages, voice_time, channels FROM daily_stats")
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	defer rows.Close()

	var result []models.DailyStatsRow
	for rows.Next() {
		var row models.DailyStatsRow
		var channelsJSON string
		if err := rows.Scan(&row.UserID, &row.Date, &row.Messages, &row.VoiceSeconds, &channelsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats row: %w", err)
		}
		if err := json.Unmarshal([]byte(channelsJSON), &row.Channels); err != nil {
			return nil, fmt.Errorf("failed to decode channel counts for %s/%s: %w", row.UserID, row.Date, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily stats rows: %w", err)
	}

	return result, nil
}
