package stats

import (
	"time"

	"github.com/sirupsen/logrus"
)

// VoiceTracker turns raw join/switch/leave transitions into elapsed
// voice time on the store. A user has at most one open session; a
// channel switch is a seam inside one continuous session, not a new
// one.
//
// The session map is only touched from the event dispatch goroutine,
// so it carries no lock of its own.
type VoiceTracker struct {
	store    *Store
	logger   logrus.FieldLogger
	sessions map[string]time.Time // userID -> joinedAt
}

// NewVoiceTracker creates a tracker writing voice time into store.
func NewVoiceTracker(store *Store, logger logrus.FieldLogger) *VoiceTracker {
	return &VoiceTracker{
		store:    store,
		logger:   logger,
		sessions: make(map[string]time.Time),
	}
}

// Transition applies one voice state change. Empty channel ids mean
// "not in a voice channel" on that side of the transition.
func (t *VoiceTracker) Transition(userID, prevChannelID, newChannelID string, now time.Time) {
	if userID == "" {
		t.logger.Warn("dropping voice transition without user id")
		return
	}

	switch {
	case prevChannelID == "" && newChannelID != "":
		// Join: start the session clock.
		t.sessions[userID] = now
		t.logger.WithFields(logrus.Fields{
			"user":    userID,
			"channel": newChannelID,
		}).Debug("voice join")

	case prevChannelID != "" && newChannelID != "" && prevChannelID != newChannelID:
		// Switch: credit the elapsed chunk and restart the clock.
		// A switch with no tracked session (process restarted
		// mid-session) is a no-op.
		joinedAt, ok := t.sessions[userID]
		if !ok {
			return
		}
		t.store.RecordVoiceTime(userID, now.Sub(joinedAt).Seconds(), now)
		t.sessions[userID] = now
		t.logger.WithFields(logrus.Fields{
			"user": userID,
			"from": prevChannelID,
			"to":   newChannelID,
		}).Debug("voice switch")

	case prevChannelID != "" && newChannelID == "":
		// Leave: credit the final chunk and close the session.
		joinedAt, ok := t.sessions[userID]
		if !ok {
			return
		}
		delete(t.sessions, userID)
		t.store.RecordVoiceTime(userID, now.Sub(joinedAt).Seconds(), now)
		t.logger.WithFields(logrus.Fields{
			"user":    userID,
			"seconds": now.Sub(joinedAt).Seconds(),
		}).Debug("voice leave")
	}
	// Same-channel updates (mute, deafen, stream) change nothing.
}
