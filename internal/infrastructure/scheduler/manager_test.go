package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentUsecases "bizcard/internal/application/payment/usecases"
	"bizcard/internal/shared/logger"
)

type countingSweeper struct {
	calls int32
	err   error
}

func (s *countingSweeper) Execute(ctx context.Context) (*paymentUsecases.SweepResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &paymentUsecases.SweepResult{Checked: 1}, nil
}

func TestSchedulerManager_SweepRunsOnStart(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, err)

	sweeper := &countingSweeper{}
	require.NoError(t, m.RegisterPendingSweepJob(sweeper, time.Hour))
	require.Len(t, m.Jobs(), 1)

	m.Start()
	assert.True(t, m.IsStarted())

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&sweeper.calls) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	require.NoError(t, m.Stop())
}

func TestSchedulerManager_SweepErrorKeepsSchedule(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, err)

	sweeper := &countingSweeper{err: errors.New("db down")}
	require.NoError(t, m.RegisterPendingSweepJob(sweeper, 50*time.Millisecond))

	m.Start()
	defer func() { _ = m.Stop() }()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&sweeper.calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}
