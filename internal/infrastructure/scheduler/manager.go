// Package scheduler runs background jobs using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	paymentUsecases "bizcard/internal/application/payment/usecases"
	"bizcard/internal/shared/biztime"
	"bizcard/internal/shared/logger"
)

// PendingSweeper reconciles payments whose webhook never arrived.
type PendingSweeper interface {
	Execute(ctx context.Context) (*paymentUsecases.SweepResult, error)
}

// SchedulerManager owns the process-wide gocron scheduler.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterPendingSweepJob sweeps stale pending payments every interval,
// starting immediately so payments left pending across a restart are picked
// up. Every instance may run it; the reconciler's conditional updates keep
// overlapping sweeps safe.
func (m *SchedulerManager) RegisterPendingSweepJob(sweeper PendingSweeper, interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.sweepPendingPayments(ctx, sweeper)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("payment", "sweep"),
		gocron.WithName("payment-pending-sweep"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered pending payment sweep", "interval", interval)
	return nil
}

func (m *SchedulerManager) sweepPendingPayments(ctx context.Context, sweeper PendingSweeper) {
	startTime := biztime.NowUTC()

	result, err := sweeper.Execute(ctx)
	if err != nil {
		m.logger.Errorw("pending payment sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Debugw("pending payment sweep completed",
		"checked", result.Checked,
		"transitioned", result.Transitioned,
		"resumed", result.Resumed,
		"failed", result.Failed,
		"duration", time.Since(startTime),
	)
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
