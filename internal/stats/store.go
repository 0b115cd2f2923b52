package stats

import (
	"sync"
	"time"

	"ecstasy/internal/models"
)

// DayFormat is the key format for daily aggregates, a UTC calendar date.
const DayFormat = "2006-01-02"

// DayKey returns the UTC calendar date key for t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// DailyAggregate holds one user's activity counters for a single UTC day.
type DailyAggregate struct {
	Messages     int64
	VoiceSeconds float64
	Channels     map[string]int64
}

// UserAggregate holds one user's lifetime totals and per-day breakdown.
type UserAggregate struct {
	TotalMessages     int64
	TotalVoiceSeconds float64
	Daily             map[string]*DailyAggregate
}

// Snapshot is a point-in-time deep copy of the store. Mutating the
// store after taking a snapshot does not change it, and vice versa.
type Snapshot struct {
	Users map[string]*UserAggregate
	// Order lists user ids in first-seen order.
	Order []string
}

// Store is the in-memory source of truth for all activity aggregates.
// Every mutation and read holds the mutex for a single short critical
// section, so the flusher and analytics never observe a half-applied
// event.
type Store struct {
	mu    sync.Mutex
	users map[string]*UserAggregate
	order []string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{users: make(map[string]*UserAggregate)}
}

// user returns the aggregate for userID, creating it on first sight.
// Callers must hold s.mu.
func (s *Store) user(userID string) *UserAggregate {
	u, ok := s.users[userID]
	if !ok {
		u = &UserAggregate{Daily: make(map[string]*DailyAggregate)}
		s.users[userID] = u
		s.order = append(s.order, userID)
	}
	return u
}

// day returns u's aggregate for the given day key, creating it lazily.
// Callers must hold s.mu.
func (u *UserAggregate) day(key string) *DailyAggregate {
	d, ok := u.Daily[key]
	if !ok {
		d = &DailyAggregate{Channels: make(map[string]int64)}
		u.Daily[key] = d
	}
	return d
}

// RecordMessage counts one message in channelID at time now. The
// lifetime total and today's daily counters move together inside one
// critical section.
func (s *Store) RecordMessage(userID, channelID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	u.TotalMessages++

	d := u.day(DayKey(now))
	d.Messages++
	d.Channels[channelID]++
}

// RecordVoiceTime adds elapsed voice seconds at time now. Negative
// durations can only come from a clock stepping backward and are
// clamped to zero to keep the accumulators non-negative.
func (s *Store) RecordVoiceTime(userID string, seconds float64, now time.Time) {
	if seconds < 0 {
		seconds = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	u.TotalVoiceSeconds += seconds
	u.day(DayKey(now)).VoiceSeconds += seconds
}

// Snapshot returns a deep copy of all aggregates for serialization.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Users: make(map[string]*UserAggregate, len(s.users)),
		Order: append([]string(nil), s.order...),
	}
	for userID, u := range s.users {
		cu := &UserAggregate{
			TotalMessages:     u.TotalMessages,
			TotalVoiceSeconds: u.TotalVoiceSeconds,
			Daily:             make(map[string]*DailyAggregate, len(u.Daily)),
		}
		for date, d := range u.Daily {
			cd := &DailyAggregate{
				Messages:     d.Messages,
				VoiceSeconds: d.VoiceSeconds,
				Channels:     make(map[string]int64, len(d.Channels)),
			}
			for channelID, count := range d.Channels {
				cd.Channels[channelID] = count
			}
			cu.Daily[date] = cd
		}
		snap.Users[userID] = cu
	}
	return snap
}

// Rehydrate loads persisted rows into an empty store at startup.
// Daily rows are applied first, then user rows overwrite the lifetime
// totals, so totals survive even when daily history is sparse.
func (s *Store) Rehydrate(userRows []models.UserStatsRow, dailyRows []models.DailyStatsRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range dailyRows {
		u := s.user(row.UserID)
		d := u.day(row.Date)
		d.Messages = row.Messages
		d.VoiceSeconds = row.VoiceSeconds
		for channelID, count := range row.Channels {
			d.Channels[channelID] = count
		}
	}
	for _, row := range userRows {
		u := s.user(row.UserID)
		u.TotalMessages = row.TotalMessages
		u.TotalVoiceSeconds = row.TotalVoiceSeconds
	}
}
