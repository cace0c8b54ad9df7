// internal/reconciler/scheduler.go
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dealsdash/internal/common/logger"
)

const DefaultSchedule = "0 0 * * *"

// Sweeper is satisfied by *Reconciler.
type Sweeper interface {
	Sweep(ctx context.Context) (Result, error)
}

// Scheduler owns the periodic sweep. It is started and stopped explicitly and
// nothing runs until Start is called.
type Scheduler struct {
	sweeper    Sweeper
	schedule   string
	parsed     cron.Schedule
	location   *time.Location
	runOnStart bool
	cron       *cron.Cron
	job        cron.Job
	logger     logger.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	entry   cron.EntryID
	running bool
	eager   sync.WaitGroup
}

type SchedulerOption func(*Scheduler)

func WithLocation(loc *time.Location) SchedulerOption {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
			s.cron = newCron(loc, s.logger)
		}
	}
}

// WithRunOnStart controls the eager sweep fired by Start. It defaults to on.
func WithRunOnStart(on bool) SchedulerOption {
	return func(s *Scheduler) { s.runOnStart = on }
}

func NewScheduler(sweeper Sweeper, schedule string, log logger.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	parsed, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid reconciler schedule %q: %w", schedule, err)
	}

	s := &Scheduler{
		sweeper:    sweeper,
		schedule:   schedule,
		parsed:     parsed,
		location:   time.Local,
		runOnStart: true,
		logger:     log.WithFields(map[string]interface{}{"component": "reconciler-scheduler", "schedule": schedule}),
	}
	s.cron = newCron(time.Local, s.logger)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func newCron(loc *time.Location, log logger.Logger) *cron.Cron {
	return cron.New(cron.WithLocation(loc), cron.WithLogger(cronLogger{log}))
}

// Start registers the schedule, fires one sweep immediately when enabled and
// returns without waiting for it. Calling Start twice is an error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("reconciler scheduler already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	// The eager run shares the wrapped job so it can never overlap a tick.
	s.job = cron.NewChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})).
		Then(cron.FuncJob(s.run))

	id, err := s.cron.AddJob(s.schedule, s.job)
	if err != nil {
		s.cancel()
		return fmt.Errorf("schedule reconciler: %w", err)
	}
	s.entry = id
	s.cron.Start()
	s.running = true

	if s.runOnStart {
		s.eager.Add(1)
		go func() {
			defer s.eager.Done()
			s.job.Run()
		}()
	}

	s.logger.Info("Reconciler scheduler started", map[string]interface{}{
		"nextRun":    s.parsed.Next(time.Now().In(s.location)).Format(time.RFC3339),
		"runOnStart": s.runOnStart,
	})
	return nil
}

// Stop halts the schedule, cancels an in-flight sweep and waits for it.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cron.Remove(s.entry)
	stopped := s.cron.Stop()
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.eager.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reconciler scheduler stopped", nil)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun reports when the next scheduled sweep fires. The zero time means
// the scheduler is not running.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.parsed.Next(time.Now().In(s.location))
}

// run never lets a sweep failure escape: the error is already logged by the
// reconciler and the schedule continues.
func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Warn("Scheduled sweep failed, will retry on next tick", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, kvToMap(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := kvToMap(keysAndValues)
	fields["error"] = fmt.Sprint(err)
	c.log.Error(msg, fields)
}

func kvToMap(kv []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return m
}
