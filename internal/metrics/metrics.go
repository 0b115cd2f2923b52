package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesIngested counts message events applied to the stats store.
	MessagesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecstasy_messages_ingested_total",
		Help: "Message events applied to the in-memory stats store.",
	})

	// VoiceTransitions counts voice state transitions processed, by kind.
	VoiceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecstasy_voice_transitions_total",
		Help: "Voice transitions processed, by transition kind.",
	}, []string{"kind"})

	// EventsDropped counts inbound events dropped before aggregation.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecstasy_events_dropped_total",
		Help: "Inbound events dropped as unidentifiable.",
	})

	// FlushPasses counts completed flush passes over the stats snapshot.
	FlushPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecstasy_flush_passes_total",
		Help: "Flush passes executed against the durable store.",
	})

	// FlushRows counts rows written during flush passes.
	FlushRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecstasy_flush_rows_total",
		Help: "Rows upserted into the durable store by flush passes.",
	})

	// FlushRowErrors counts per-row write failures during flush passes.
	FlushRowErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecstasy_flush_row_errors_total",
		Help: "Row upserts that failed during flush passes.",
	})
)

// Serve exposes /metrics on addr. It blocks, so run it in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
