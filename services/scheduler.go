package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"fincore-assistant/internal/logger"
	"fincore-assistant/internal/store"
)

// Standing job names.
const (
	JobIndexRefresh = "index-refresh"
	JobCacheSweep   = "cache-sweep"
	JobHealthProbe  = "health-probe"
)

// HealthChecker probes the external financial core.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// JobHandler is one scheduled unit of work. The context carries the job's
// run deadline.
type JobHandler func(ctx context.Context) error

type jobSpec struct {
	interval time.Duration
	timeout  time.Duration
	handler  JobHandler
}

// JobScheduler owns the named periodic jobs of the assistant. Jobs are
// independently stoppable and restartable; stopping cancels future firings
// but never interrupts a handler already running.
type JobScheduler struct {
	mu         sync.Mutex
	scheduler  *gocron.Scheduler
	specs      map[string]jobSpec
	registered map[string]bool
	started    bool
}

// SchedulerIntervals carries the three standing cadences.
type SchedulerIntervals struct {
	Index       time.Duration
	CacheSweep  time.Duration
	HealthProbe time.Duration
}

func NewJobScheduler(intervals SchedulerIntervals, indexer *Indexer, st store.Store, health HealthChecker) *JobScheduler {
	if intervals.Index <= 0 {
		intervals.Index = 6 * time.Hour
	}
	if intervals.CacheSweep <= 0 {
		intervals.CacheSweep = time.Hour
	}
	if intervals.HealthProbe <= 0 {
		intervals.HealthProbe = 30 * time.Minute
	}

	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	js := &JobScheduler{
		scheduler:  s,
		registered: make(map[string]bool),
	}

	js.specs = map[string]jobSpec{
		JobIndexRefresh: {
			interval: intervals.Index,
			timeout:  30 * time.Minute,
			handler: func(ctx context.Context) error {
				_, err := indexer.IndexAll(ctx)
				return err
			},
		},
		JobCacheSweep: {
			interval: intervals.CacheSweep,
			timeout:  5 * time.Minute,
			handler: func(ctx context.Context) error {
				removed, err := st.DeleteExpiredCache(ctx, time.Now())
				if err != nil {
					return err
				}
				if removed > 0 {
					logger.Info("Cache sweep removed expired entries", "removed", removed)
				}
				return nil
			},
		},
		JobHealthProbe: {
			interval: intervals.HealthProbe,
			timeout:  30 * time.Second,
			handler: func(ctx context.Context) error {
				if !health.HealthCheck(ctx) {
					// Degraded external core is a warning, never a stop.
					logger.Warn("Financial core health probe failed")
				}
				return nil
			},
		},
	}

	return js
}

// StartAll registers and starts every standing job. Idempotent: calling it
// twice does not double-register.
func (js *JobScheduler) StartAll() error {
	js.mu.Lock()
	defer js.mu.Unlock()

	for name, spec := range js.specs {
		if js.registered[name] {
			continue
		}
		if err := js.schedule(name, spec); err != nil {
			return fmt.Errorf("schedule job %s: %w", name, err)
		}
	}

	if !js.started {
		js.scheduler.StartAsync()
		js.started = true
		logger.Info("Job scheduler started", "jobs", len(js.registered))
	}
	return nil
}

// schedule registers one job. Caller holds the lock.
func (js *JobScheduler) schedule(name string, spec jobSpec) error {
	_, err := js.scheduler.Every(spec.interval).Tag(name).SingletonMode().Do(func() {
		js.runJob(name, spec)
	})
	if err != nil {
		return err
	}
	js.registered[name] = true
	return nil
}

func (js *JobScheduler) runJob(name string, spec jobSpec) {
	ctx, cancel := context.WithTimeout(context.Background(), spec.timeout)
	defer cancel()

	start := time.Now()
	if err := spec.handler(ctx); err != nil {
		logger.Error("Scheduled job failed", "job", name, "error", err, "duration", time.Since(start).String())
		return
	}
	logger.Debug("Scheduled job finished", "job", name, "duration", time.Since(start).String())
}

// Stop cancels future firings of the named job. Returns false when the job
// is unknown or already stopped.
func (js *JobScheduler) Stop(name string) bool {
	js.mu.Lock()
	defer js.mu.Unlock()

	if !js.registered[name] {
		logger.Warn("Stop requested for unknown job", "job", name)
		return false
	}
	if err := js.scheduler.RemoveByTag(name); err != nil {
		logger.Warn("Failed to remove job", "job", name, "error", err)
		return false
	}
	delete(js.registered, name)
	return true
}

// Restart stops then re-registers the named job. Returns false when the job
// name is unknown.
func (js *JobScheduler) Restart(name string) bool {
	js.mu.Lock()
	defer js.mu.Unlock()

	spec, ok := js.specs[name]
	if !ok {
		logger.Warn("Restart requested for unknown job", "job", name)
		return false
	}

	if js.registered[name] {
		if err := js.scheduler.RemoveByTag(name); err != nil {
			logger.Warn("Failed to remove job during restart", "job", name, "error", err)
			return false
		}
		delete(js.registered, name)
	}

	if err := js.schedule(name, spec); err != nil {
		logger.Error("Failed to reschedule job", "job", name, "error", err)
		return false
	}
	return true
}

// TriggerNow runs the named job's handler once, outside its schedule. The
// schedule itself is untouched.
func (js *JobScheduler) TriggerNow(name string) error {
	js.mu.Lock()
	spec, ok := js.specs[name]
	js.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown job: %s", name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), spec.timeout)
	defer cancel()
	return spec.handler(ctx)
}

// Status reports every registered job and whether its timer is live.
func (js *JobScheduler) Status() map[string]bool {
	js.mu.Lock()
	defer js.mu.Unlock()

	status := make(map[string]bool, len(js.registered))
	for name := range js.registered {
		status[name] = js.started
	}
	return status
}

// StopAll removes every job and halts the scheduler. Used on process
// shutdown; in-flight handlers run to completion or to their own timeout.
func (js *JobScheduler) StopAll() {
	js.mu.Lock()
	defer js.mu.Unlock()

	js.scheduler.Clear()
	js.scheduler.Stop()
	js.registered = make(map[string]bool)
	js.started = false
	logger.Info("Job scheduler stopped")
}
