// Package scheduler fires the synchronizer on an interval and optionally
// once shortly after startup.
//
// Both triggers go through the synchronizer's advisory gate, so a tick
// arriving while a run is in flight is dropped. Stopping the scheduler
// only prevents future triggers; a run already started always completes.
package scheduler

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	issuesync "github.com/fyrsmithlabs/notesync/internal/sync"
)

// startupDelay is how long after Start the one-time startup run fires.
const startupDelay = 30 * time.Second

// Scheduler owns the interval and startup triggers.
type Scheduler struct {
	svc          issuesync.Service
	interval     time.Duration
	onStartup    bool
	startupDelay time.Duration
	logger       *zap.Logger

	stopOnce stdsync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates a scheduler. intervalMinutes of zero disables the interval
// trigger; onStartup false disables the startup trigger.
func New(svc issuesync.Service, intervalMinutes int, onStartup bool, logger *zap.Logger) (*Scheduler, error) {
	if svc == nil {
		return nil, errors.New("sync service is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		svc:          svc,
		interval:     time.Duration(intervalMinutes) * time.Minute,
		onStartup:    onStartup,
		startupDelay: startupDelay,
		logger:       logger,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}, nil
}

// Start launches the trigger loop. It returns immediately; triggers fire
// on the scheduler's own goroutine until Stop or ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx)
}

// Stop prevents all future triggers. It does not cancel an in-flight
// run. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	var startup <-chan time.Time
	if s.onStartup {
		timer := time.NewTimer(s.startupDelay)
		defer timer.Stop()
		startup = timer.C
	}

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	if startup == nil && tick == nil {
		s.logger.Info("scheduler idle, no triggers configured")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-startup:
			startup = nil
			s.trigger(ctx, "startup")
		case <-tick:
			s.trigger(ctx, "interval")
		}
	}
}

// trigger fires one gated run. The run gets a context detached from the
// scheduler's so that stopping the scheduler never cancels it mid-flight.
func (s *Scheduler) trigger(ctx context.Context, kind string) {
	s.logger.Debug("scheduled sync trigger", zap.String("kind", kind))
	_, err := s.svc.TryRun(context.WithoutCancel(ctx))
	if errors.Is(err, issuesync.ErrRunInFlight) {
		return
	}
	if err != nil {
		s.logger.Warn("scheduled sync failed", zap.String("kind", kind), zap.Error(err))
	}
}
