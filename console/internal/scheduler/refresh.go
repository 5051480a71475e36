// Package scheduler triggers dashboard refreshes on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/controller"
)

// Refresher is satisfied by *controller.Controller
type Refresher interface {
	Refresh(ctx context.Context) error
}

// AutoRefresh re-runs the refresh for the selected patient on a schedule.
// A tick whose refresh is superseded by a newer one is not an error.
type AutoRefresh struct {
	cron     *cron.Cron
	schedule cron.Schedule
	target   Refresher
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAutoRefresh parses spec in standard cron syntax, descriptors such as
// "@every 30s" included.
func NewAutoRefresh(spec string, target Refresher, timeout time.Duration, logger *zap.Logger) (*AutoRefresh, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	a := &AutoRefresh{
		cron:     cron.New(),
		schedule: schedule,
		target:   target,
		timeout:  timeout,
		logger:   logger,
	}
	a.cron.Schedule(schedule, cron.FuncJob(a.tick))
	return a, nil
}

func (a *AutoRefresh) Start() {
	a.cron.Start()
	a.logger.Info("Auto refresh started", zap.Time("next_run", a.Next(time.Now())))
}

// Stop halts the schedule and waits for a running refresh to finish
func (a *AutoRefresh) Stop() {
	<-a.cron.Stop().Done()
	a.logger.Info("Auto refresh stopped")
}

// Next returns the first tick after t
func (a *AutoRefresh) Next(t time.Time) time.Time {
	return a.schedule.Next(t)
}

func (a *AutoRefresh) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	err := a.target.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, controller.ErrSuperseded), errors.Is(err, controller.ErrNoPatient):
		a.logger.Debug("Scheduled refresh skipped", zap.Error(err))
	default:
		a.logger.Warn("Scheduled refresh failed", zap.Error(err))
	}
}
