package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/controller"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestNewAutoRefresh_InvalidSchedule(t *testing.T) {
	_, err := NewAutoRefresh("every now and then", &countingRefresher{}, 0, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid refresh schedule")
}

func TestAutoRefresh_Next(t *testing.T) {
	a, err := NewAutoRefresh("*/5 * * * *", &countingRefresher{}, 0, zap.NewNop())
	require.NoError(t, err)

	from := time.Date(2026, 3, 1, 10, 2, 30, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC), a.Next(from))
}

func TestAutoRefresh_Ticks(t *testing.T) {
	target := &countingRefresher{}
	a, err := NewAutoRefresh("@every 1s", target, time.Second, zap.NewNop())
	require.NoError(t, err)

	a.Start()
	defer a.Stop()

	require.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestAutoRefresh_TickToleratesErrors(t *testing.T) {
	for _, err := range []error{controller.ErrSuperseded, controller.ErrNoPatient, context.DeadlineExceeded} {
		target := &countingRefresher{err: err}
		a, nerr := NewAutoRefresh("@hourly", target, time.Second, zap.NewNop())
		require.NoError(t, nerr)

		a.tick()
		require.Equal(t, int32(1), target.calls.Load())
	}
}
