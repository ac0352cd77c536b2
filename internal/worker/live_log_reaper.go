package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ExpiredFlusher queues live logs of exams that have closed.
type ExpiredFlusher interface {
	FlushExpired(ctx context.Context, grace time.Duration) (int, error)
}

// LiveLogReaper persists live cheating logs that were never flushed by the
// learner, for example when the browser closed before submitting.
type LiveLogReaper struct {
	flusher  ExpiredFlusher
	schedule string
	grace    time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewLiveLogReaper creates a reaper running on a cron schedule such as
// "@every 5m". Logs are reaped once their exam closed more than grace ago.
func NewLiveLogReaper(flusher ExpiredFlusher, schedule string, grace time.Duration, log zerolog.Logger) *LiveLogReaper {
	return &LiveLogReaper{
		flusher:  flusher,
		schedule: schedule,
		grace:    grace,
		timeout:  time.Minute,
		log:      log.With().Str("component", "live_log_reaper").Logger(),
	}
}

// Start schedules the reaper and blocks until ctx is cancelled and any
// running pass has finished.
func (r *LiveLogReaper) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{r.log})))
	if _, err := c.AddFunc(r.schedule, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule live log reaper %q: %w", r.schedule, err)
	}

	r.log.Info().Str("schedule", r.schedule).Dur("grace", r.grace).Msg("LiveLogReaper started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	r.log.Info().Msg("LiveLogReaper stopped")
	return nil
}

// RunOnce performs a single reaping pass.
func (r *LiveLogReaper) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.flusher.FlushExpired(runCtx, r.grace)
	if err != nil {
		r.log.Error().Err(err).Int("flushed", n).Msg("Live log reaping failed")
		return
	}
	if n > 0 {
		r.log.Info().Int("flushed", n).Msg("Reaped expired live logs")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
