package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"ecstasy/internal/metrics"
)

// Repository is the durable-store surface the flusher writes to. Both
// upserts are idempotent merge-writes: insert if absent, otherwise
// overwrite the non-key columns with the snapshot's values.
type Repository interface {
	UpsertUserStats(userID string, totalMessages int64, totalVoiceSeconds float64) error
	UpsertDailyStats(userID, date string, messages int64, voiceSeconds float64, channelsJSON string) error
}

// Flusher periodically snapshots the store and writes it through to
// the repository. The in-memory store stays authoritative: a failed
// row is logged and retried naturally on the next pass because the
// snapshot always carries current values.
type Flusher struct {
	store    *Store
	repo     Repository
	interval time.Duration
	logger   logrus.FieldLogger
	cron     *cron.Cron
}

// NewFlusher creates a flusher writing store snapshots to repo every
// interval.
func NewFlusher(store *Store, repo Repository, interval time.Duration, logger logrus.FieldLogger) *Flusher {
	return &Flusher{
		store:    store,
		repo:     repo,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the periodic flush. A tick that fires while the
// previous pass is still writing is skipped, not queued.
func (f *Flusher) Start() error {
	f.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(f.logger)),
	))
	if _, err := f.cron.AddFunc(fmt.Sprintf("@every %s", f.interval), f.Flush); err != nil {
		return fmt.Errorf("failed to schedule flush: %w", err)
	}
	f.cron.Start()
	f.logger.WithField("interval", f.interval).Info("flush scheduler started")
	return nil
}

// Stop halts the schedule, waits for any in-flight pass, then runs
// one final synchronous flush so at most an abrupt kill loses data.
func (f *Flusher) Stop() {
	if f.cron != nil {
		<-f.cron.Stop().Done()
	}
	f.Flush()
}

// Flush writes one snapshot through to the repository. Row failures
// are logged and skipped; the pass never mutates the store.
func (f *Flusher) Flush() {
	snap := f.store.Snapshot()

	var rows, failed int
	for _, userID := range snap.Order {
		u := snap.Users[userID]
		if err := f.repo.UpsertUserStats(userID, u.TotalMessages, u.TotalVoiceSeconds); err != nil {
			f.logger.WithError(err).WithField("user", userID).Error("failed to flush user stats")
			metrics.FlushRowErrors.Inc()
			failed++
		} else {
			metrics.FlushRows.Inc()
			rows++
		}

		for _, date := range sortedDates(u.Daily) {
			d := u.Daily[date]
			encoded, err := json.Marshal(d.Channels)
			if err != nil {
				// A map[string]int64 cannot fail to encode; guard anyway.
				f.logger.WithError(err).WithField("user", userID).Error("failed to encode channel counts")
				metrics.FlushRowErrors.Inc()
				failed++
				continue
			}
			if err := f.repo.UpsertDailyStats(userID, date, d.Messages, d.VoiceSeconds, string(encoded)); err != nil {
				f.logger.WithError(err).WithFields(logrus.Fields{
					"user": userID,
					"date": date,
				}).Error("failed to flush daily stats")
				metrics.FlushRowErrors.Inc()
				failed++
				continue
			}
			metrics.FlushRows.Inc()
			rows++
		}
	}

	metrics.FlushPasses.Inc()
	if failed > 0 {
		f.logger.WithFields(logrus.Fields{"rows": rows, "failed": failed}).Warn("stats flushed with errors")
	} else {
		f.logger.WithField("rows", rows).Debug("stats flushed to database")
	}
}

func sortedDates(daily map[string]*DailyAggregate) []string {
	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	// Lexicographic order of YYYY-MM-DD keys is chronological.
	sort.Strings(dates)
	return dates
}
