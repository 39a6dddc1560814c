package main

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// keyPurger is the slice of SaleService the purge job needs.
type keyPurger interface {
	PurgeExpiredKeys(ctx context.Context) (int64, error)
}

// purgeTimeout bounds a single purge run.
const purgeTimeout = time.Minute

type purger struct {
	cron *cron.Cron
}

// startPurger runs svc.PurgeExpiredKeys on schedule, given in standard cron
// syntax or as a descriptor such as "@hourly". An empty or "off" schedule
// disables the job.
func startPurger(schedule string, svc keyPurger) (*purger, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" || strings.EqualFold(schedule, "off") {
		return &purger{}, nil
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{}), cron.Recover(cronLogger{})),
	)
	if _, err := c.AddFunc(schedule, func() { purgeOnce(svc) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("schedule", schedule).Msg("idempotency purge scheduled")
	return &purger{cron: c}, nil
}

// stop halts scheduling and waits for a running purge to finish.
func (p *purger) stop() {
	if p == nil || p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}

func purgeOnce(svc keyPurger) {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	n, err := svc.PurgeExpiredKeys(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("purge idempotency keys")
		return
	}
	log.Debug().Int64("purged", n).Msg("purge idempotency keys")
}

// cronLogger routes cron's internal messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
