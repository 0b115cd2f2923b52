package models

// UserStatsRow represents a row of the user_stats table
type UserStatsRow struct {
	UserID            string
	TotalMessages     int64
	TotalVoiceSeconds float64
}

// DailyStatsRow represents a row of the daily_stats table.
// Channels holds the per-channel message counts decoded from the
// JSON column.
type DailyStatsRow struct {
	UserID       string
	Date         string
	Messages     int64
	VoiceSeconds float64
	Channels     map[string]int64
}
