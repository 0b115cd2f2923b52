package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// analyticsAt pins the analytics clock so window math is stable.
func analyticsAt(s *Store, now time.Time) *Analytics {
	a := NewAnalytics(s)
	a.now = func() time.Time { return now }
	return a
}

func TestWindowDates(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"2025-03-10"}, WindowDates(now, 1))
	assert.Equal(t, []string{
		"2025-03-04", "2025-03-05", "2025-03-06", "2025-03-07",
		"2025-03-08", "2025-03-09", "2025-03-10",
	}, WindowDates(now, 7))
}

func TestMessagesInWindow(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	s.RecordMessage("U1", "C1", now)
	s.RecordMessage("U1", "C1", now.AddDate(0, 0, -3))
	s.RecordMessage("U1", "C1", now.AddDate(0, 0, -10)) // outside 7d

	assert.Equal(t, int64(1), a.MessagesInWindow("U1", 1))
	assert.Equal(t, int64(2), a.MessagesInWindow("U1", 7))
	assert.Equal(t, int64(0), a.MessagesInWindow("nobody", 7))
}

func TestVoiceHoursInWindowFloors(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	s.RecordVoiceTime("U1", 300, now)
	assert.Equal(t, int64(0), a.VoiceHoursInWindow("U1", 1))

	s.RecordVoiceTime("U1", 7000, now)
	assert.Equal(t, int64(2), a.VoiceHoursInWindow("U1", 1))
	assert.Equal(t, 7300.0, a.VoiceSecondsInWindow("U1", 1))
}

func TestLifetimeTotals(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	s.RecordMessage("U1", "C1", now.AddDate(0, 0, -30))
	s.RecordMessage("U1", "C1", now)
	s.RecordVoiceTime("U1", 500, now.AddDate(0, 0, -30))

	messages, voiceSeconds := a.LifetimeTotals("U1")
	assert.Equal(t, int64(2), messages)
	assert.Equal(t, 500.0, voiceSeconds)

	messages, voiceSeconds = a.LifetimeTotals("nobody")
	assert.Equal(t, int64(0), messages)
	assert.Equal(t, 0.0, voiceSeconds)
}

func TestRank(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	for i := 0; i < 5; i++ {
		s.RecordMessage("A", "C1", now)
	}
	for i := 0; i < 10; i++ {
		s.RecordMessage("B", "C1", now)
	}

	assert.Equal(t, 1, a.Rank("B"))
	assert.Equal(t, 2, a.Rank("A"))
	assert.Equal(t, 0, a.Rank("unknown"))
}

func TestRankTiesKeepFirstSeenOrder(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	s.RecordMessage("first", "C1", now)
	s.RecordMessage("second", "C1", now)
	s.RecordMessage("third", "C1", now)

	assert.Equal(t, 1, a.Rank("first"))
	assert.Equal(t, 2, a.Rank("second"))
	assert.Equal(t, 3, a.Rank("third"))
}

func TestRankIsBijection(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	users := []string{"U1", "U2", "U3", "U4"}
	for i, id := range users {
		for j := 0; j <= i; j++ {
			s.RecordMessage(id, "C1", now)
		}
	}

	seen := make(map[int]bool)
	for _, id := range users {
		r := a.Rank(id)
		assert.False(t, seen[r], "rank %d assigned twice", r)
		seen[r] = true
		assert.GreaterOrEqual(t, r, 1)
		assert.LessOrEqual(t, r, len(users))
	}
}

func TestTopChannels(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	yesterday := now.AddDate(0, 0, -1)
	s.RecordMessage("U1", "C1", yesterday)
	s.RecordMessage("U1", "C1", now)
	s.RecordMessage("U1", "C1", now)
	s.RecordMessage("U1", "C2", now)
	s.RecordMessage("U1", "C2", now)
	s.RecordMessage("U1", "C3", now)

	top := a.TopChannels("U1", 2, 7)
	require.Len(t, top, 2)
	assert.Equal(t, ChannelCount{ChannelID: "C1", Count: 3}, top[0])
	assert.Equal(t, ChannelCount{ChannelID: "C2", Count: 2}, top[1])

	// The 1-day window drops yesterday's C1 message, tying C1 and C2;
	// ties resolve by channel id.
	top = a.TopChannels("U1", 3, 1)
	require.Len(t, top, 3)
	assert.Equal(t, "C1", top[0].ChannelID)
	assert.Equal(t, "C2", top[1].ChannelID)

	assert.Nil(t, a.TopChannels("nobody", 3, 7))
}

func TestTopUsersAndServerTotals(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	for i := 0; i < 5; i++ {
		s.RecordMessage("A", "C1", now)
	}
	for i := 0; i < 10; i++ {
		s.RecordMessage("B", "C1", now)
	}
	s.RecordVoiceTime("A", 120, now)
	s.RecordVoiceTime("B", 180, now.AddDate(0, 0, -2))

	top := a.TopUsers(5, 7)
	require.Len(t, top, 2)
	assert.Equal(t, UserCount{UserID: "B", Messages: 10}, top[0])
	assert.Equal(t, UserCount{UserID: "A", Messages: 5}, top[1])

	messages, voiceSeconds := a.ServerTotals(7)
	assert.Equal(t, int64(15), messages)
	assert.Equal(t, 300.0, voiceSeconds)

	messages, voiceSeconds = a.ServerTotals(1)
	assert.Equal(t, int64(15), messages)
	assert.Equal(t, 120.0, voiceSeconds)
}

func TestDailySeries(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	a := analyticsAt(s, now)

	s.RecordMessage("U1", "C1", now)
	s.RecordMessage("U1", "C1", now.AddDate(0, 0, -2))
	s.RecordVoiceTime("U1", 90, now)

	dates, messages, voiceSeconds := a.DailySeries("U1", 7)
	require.Len(t, dates, 7)
	require.Len(t, messages, 7)
	require.Len(t, voiceSeconds, 7)

	assert.Equal(t, "2025-03-10", dates[6])
	assert.Equal(t, int64(1), messages[6])
	assert.Equal(t, 90.0, voiceSeconds[6])
	assert.Equal(t, int64(1), messages[4])
	assert.Equal(t, int64(0), messages[0])

	// Unknown users still get a full zero-filled window.
	_, messages, _ = a.DailySeries("nobody", 3)
	assert.Equal(t, []int64{0, 0, 0}, messages)
}

func TestAnalyticsScenarioSingleUserDay(t *testing.T) {
	s := NewStore()
	now := time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC)
	a := analyticsAt(s, now)
	tr := NewVoiceTracker(s, testLogger())

	for i := 0; i < 3; i++ {
		s.RecordMessage("U1", "C1", now)
	}
	tr.Transition("U1", "", "V1", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	tr.Transition("U1", "V1", "", time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC))

	u := s.Snapshot().Users["U1"]
	assert.Equal(t, int64(3), u.TotalMessages)
	assert.Equal(t, int64(3), u.Daily["2025-03-10"].Messages)
	assert.Equal(t, map[string]int64{"C1": 3}, u.Daily["2025-03-10"].Channels)
	assert.Equal(t, 300.0, u.TotalVoiceSeconds)

	assert.Equal(t, int64(0), a.VoiceHoursInWindow("U1", 1))
	assert.Equal(t, int64(3), a.MessagesInWindow("U1", 7))
}
