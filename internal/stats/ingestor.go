package stats

import (
	"time"

	"github.com/sirupsen/logrus"

	"ecstasy/internal/metrics"
)

// Ingestor is the single entry point for inbound platform events. It
// does not deduplicate redelivered events; a duplicate message event
// double-counts.
type Ingestor struct {
	store  *Store
	voice  *VoiceTracker
	logger logrus.FieldLogger
}

// NewIngestor wires the ingestor to its store and voice tracker.
func NewIngestor(store *Store, voice *VoiceTracker, logger logrus.FieldLogger) *Ingestor {
	return &Ingestor{store: store, voice: voice, logger: logger}
}

// OnMessage records one text message. Events without a user id are
// dropped and logged; ingestion never fails.
func (i *Ingestor) OnMessage(userID, channelID string, ts time.Time) {
	if userID == "" {
		i.logger.Warn("dropping message event without user id")
		metrics.EventsDropped.Inc()
		return
	}
	i.store.RecordMessage(userID, channelID, ts)
	metrics.MessagesIngested.Inc()
}

// OnVoiceTransition records one voice state change. Empty channel ids
// mean the user was/is not in a voice channel.
func (i *Ingestor) OnVoiceTransition(userID, prevChannelID, newChannelID string, ts time.Time) {
	if userID == "" {
		i.logger.Warn("dropping voice event without user id")
		metrics.EventsDropped.Inc()
		return
	}
	i.voice.Transition(userID, prevChannelID, newChannelID, ts)
	metrics.VoiceTransitions.WithLabelValues(transitionKind(prevChannelID, newChannelID)).Inc()
}

func transitionKind(prev, next string) string {
	switch {
	case prev == "" && next != "":
		return "join"
	case prev != "" && next == "":
		return "leave"
	case prev != "" && next != "" && prev != next:
		return "switch"
	default:
		return "update"
	}
}
