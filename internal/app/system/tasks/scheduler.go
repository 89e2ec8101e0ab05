// Package tasks runs periodic maintenance jobs on a gocron scheduler.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/metrics"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Job is one periodic unit of work.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per run; 0 means Interval
	Run      func(ctx context.Context) error
}

// Scheduler wraps a UTC gocron scheduler. A job never overlaps itself.
type Scheduler struct {
	s      *gocron.Scheduler
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler returns an idle scheduler; jobs run with contexts derived from
// parent and are cancelled by Stop.
func NewScheduler(parent context.Context, log *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{s: s, log: log, ctx: ctx, cancel: cancel}
}

// Add registers jobs. Jobs with a non-positive interval are skipped.
func (sc *Scheduler) Add(jobs ...Job) error {
	for _, j := range jobs {
		if j.Interval <= 0 || j.Run == nil {
			sc.log.Info("job disabled", zap.String("job", j.Name))
			continue
		}
		j := j
		if _, err := sc.s.Every(j.Interval).WaitForSchedule().Tag(j.Name).Do(func() { sc.runOnce(j) }); err != nil {
			return fmt.Errorf("schedule %s: %w", j.Name, err)
		}
		sc.log.Info("job scheduled", zap.String("job", j.Name), zap.Duration("interval", j.Interval))
	}
	return nil
}

func (sc *Scheduler) runOnce(j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = j.Interval
	}
	ctx, cancel := context.WithTimeout(sc.ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		metrics.JobRuns.WithLabelValues(j.Name, "error").Inc()
		sc.log.Warn("job failed", zap.String("job", j.Name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return
	}
	metrics.JobRuns.WithLabelValues(j.Name, "ok").Inc()
	sc.log.Debug("job finished", zap.String("job", j.Name), zap.Duration("took", time.Since(start)))
}

// Start begins running jobs in the background.
func (sc *Scheduler) Start() { sc.s.StartAsync() }

// Stop cancels running jobs and stops the scheduler.
func (sc *Scheduler) Stop() {
	sc.cancel()
	sc.s.Stop()
}
