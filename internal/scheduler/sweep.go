// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lovaraju987/seven-nights-stay-sub000/internal/app"
	"github.com/robfig/cron/v3"
)

const DefaultSweepSchedule = "@every 15m"

type Sweeper interface {
	SweepLapsed(ctx context.Context) (app.SweepResult, error)
}

// SubscriptionSweep marks lapsed subscriptions expired and suspends the
// listings of owners left without a usable subscription.
type SubscriptionSweep struct {
	cron    *cron.Cron
	job     cron.Job
	running sync.WaitGroup
	sweeper Sweeper
	logger  *slog.Logger
	timeout time.Duration
}

func NewSubscriptionSweep(sweeper Sweeper, schedule string, logger *slog.Logger) (*SubscriptionSweep, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &SubscriptionSweep{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
	// The startup run and scheduled ticks share one wrapped job so they
	// never overlap.
	s.job = cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).
		Then(cron.FuncJob(func() { s.RunOnce(context.Background()) }))
	if _, err := s.cron.AddJob(schedule, s.job); err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start runs one sweep immediately and then follows the schedule.
func (s *SubscriptionSweep) Start() {
	s.logger.Info("starting subscription sweep")
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		s.job.Run()
	}()
	s.cron.Start()
}

// Stop waits for any running sweep, including the startup one, to finish
// or ctx to expire.
func (s *SubscriptionSweep) Stop(ctx context.Context) {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("subscription sweep still running at shutdown")
	}
}

func (s *SubscriptionSweep) RunOnce(ctx context.Context) app.SweepResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	res, err := s.sweeper.SweepLapsed(ctx)
	attrs := []any{
		"expired", res.Expired,
		"owners", res.Owners,
		"suspended", res.Suspended,
		"duration", time.Since(started),
	}
	if err != nil {
		s.logger.Error("subscription sweep failed", append(attrs, "error", err)...)
		return res
	}
	s.logger.Info("subscription sweep finished", attrs...)
	return res
}
