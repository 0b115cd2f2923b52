package stats

import (
	"sort"
	"time"
)

// ChannelCount is a channel id with its message count in a window.
type ChannelCount struct {
	ChannelID string
	Count     int64
}

// UserCount is a user id with its message count in a window.
type UserCount struct {
	UserID   string
	Messages int64
}

// Analytics computes windowed reads over the live store. All methods
// answer from memory only, so they keep working when the durable store
// is down.
type Analytics struct {
	store *Store
	now   func() time.Time
}

// NewAnalytics creates the read side over store.
func NewAnalytics(store *Store) *Analytics {
	return &Analytics{store: store, now: time.Now}
}

// WindowDates returns the trailing UTC calendar dates ending on the
// day of now, oldest first.
func WindowDates(now time.Time, days int) []string {
	dates := make([]string, 0, days)
	day := now.UTC()
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, DayKey(day.AddDate(0, 0, -i)))
	}
	return dates
}

// MessagesInWindow sums daily message counts over the trailing window
// ending today. Days with no activity contribute zero.
func (a *Analytics) MessagesInWindow(userID string, days int) int64 {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return a.messagesInWindowLocked(userID, WindowDates(a.now(), days))
}

func (a *Analytics) messagesInWindowLocked(userID string, dates []string) int64 {
	u, ok := a.store.users[userID]
	if !ok {
		return 0
	}
	var sum int64
	for _, date := range dates {
		if d, ok := u.Daily[date]; ok {
			sum += d.Messages
		}
	}
	return sum
}

// VoiceSecondsInWindow sums daily voice seconds over the trailing
// window ending today.
func (a *Analytics) VoiceSecondsInWindow(userID string, days int) float64 {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	u, ok := a.store.users[userID]
	if !ok {
		return 0
	}
	var sum float64
	for _, date := range WindowDates(a.now(), days) {
		if d, ok := u.Daily[date]; ok {
			sum += d.VoiceSeconds
		}
	}
	return sum
}

// VoiceHoursInWindow is VoiceSecondsInWindow floored to whole hours.
func (a *Analytics) VoiceHoursInWindow(userID string, days int) int64 {
	return int64(a.VoiceSecondsInWindow(userID, days)) / 3600
}

// LifetimeTotals returns a user's lifetime message count and voice
// seconds, zeros for unknown users.
func (a *Analytics) LifetimeTotals(userID string) (messages int64, voiceSeconds float64) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	u, ok := a.store.users[userID]
	if !ok {
		return 0, 0
	}
	return u.TotalMessages, u.TotalVoiceSeconds
}

// Rank orders all known users by descending 7-day message sum and
// returns the 1-based position of userID. Ties keep first-seen order,
// so the ranking is deterministic. Unknown users rank 0.
func (a *Analytics) Rank(userID string) int {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	dates := WindowDates(a.now(), 7)
	ids := append([]string(nil), a.store.order...)
	sums := make(map[string]int64, len(ids))
	for _, id := range ids {
		sums[id] = a.messagesInWindowLocked(id, dates)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return sums[ids[i]] > sums[ids[j]]
	})
	for i, id := range ids {
		if id == userID {
			return i + 1
		}
	}
	return 0
}

// TopChannels aggregates a user's per-channel message counts across
// the window and returns the n busiest channels, highest first. Count
// ties fall back to channel id order so results are stable.
func (a *Analytics) TopChannels(userID string, n, days int) []ChannelCount {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	u, ok := a.store.users[userID]
	if !ok {
		return nil
	}
	counts := make(map[string]int64)
	for _, date := range WindowDates(a.now(), days) {
		if d, ok := u.Daily[date]; ok {
			for channelID, count := range d.Channels {
				counts[channelID] += count
			}
		}
	}
	if len(counts) == 0 {
		return nil
	}

	top := make([]ChannelCount, 0, len(counts))
	for channelID, count := range counts {
		top = append(top, ChannelCount{ChannelID: channelID, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].ChannelID < top[j].ChannelID
	})
	if n < len(top) {
		top = top[:n]
	}
	return top
}

// TopUsers returns the n users with the highest message sums in the
// window, highest first, ties in first-seen order.
func (a *Analytics) TopUsers(n, days int) []UserCount {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	dates := WindowDates(a.now(), days)
	top := make([]UserCount, 0, len(a.store.order))
	for _, id := range a.store.order {
		top = append(top, UserCount{UserID: id, Messages: a.messagesInWindowLocked(id, dates)})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Messages > top[j].Messages
	})
	if n < len(top) {
		top = top[:n]
	}
	return top
}

// ServerTotals sums messages and voice seconds across every known
// user over the window.
func (a *Analytics) ServerTotals(days int) (messages int64, voiceSeconds float64) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	dates := WindowDates(a.now(), days)
	for _, u := range a.store.users {
		for _, date := range dates {
			if d, ok := u.Daily[date]; ok {
				messages += d.Messages
				voiceSeconds += d.VoiceSeconds
			}
		}
	}
	return messages, voiceSeconds
}

// DailySeries returns the window's dates with the user's per-day
// message and voice-second values, oldest first. Missing days yield
// zeros, so the three slices always have equal length.
func (a *Analytics) DailySeries(userID string, days int) (dates []string, messages []int64, voiceSeconds []float64) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	dates = WindowDates(a.now(), days)
	messages = make([]int64, len(dates))
	voiceSeconds = make([]float64, len(dates))

	u, ok := a.store.users[userID]
	if !ok {
		return dates, messages, voiceSeconds
	}
	for i, date := range dates {
		if d, ok := u.Daily[date]; ok {
			messages[i] = d.Messages
			voiceSeconds[i] = d.VoiceSeconds
		}
	}
	return dates, messages, voiceSeconds
}
