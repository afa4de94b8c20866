package maintenance

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/lukewarren/accountd/internal/services"
	"github.com/lukewarren/accountd/pkg/logger"
)

const defaultSchedule = "@daily"

// Cleaner runs the activity-log retention sweep on a cron schedule. The
// recorder itself is append-only; all deletion lives here.
type Cleaner struct {
	activity  *services.ActivityService
	cron      *cron.Cron
	log       *zap.Logger
	retention int
	schedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithSchedule overrides the cron specification for the retention sweep.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A non-positive retention disables the
// sweep entirely.
func NewCleaner(activity *services.ActivityService, retentionDays int, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		activity:  activity,
		retention: retentionDays,
		schedule:  defaultSchedule,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Enabled reports whether the sweep will run.
func (c *Cleaner) Enabled() bool {
	return c.activity != nil && c.retention > 0
}

// Start registers the sweep with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if !c.Enabled() {
		return nil
	}

	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Warn("activity retention sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for any running job to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes the retention sweep immediately. Used by the scheduler,
// during graceful shutdown, and in tests.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	deleted, err := c.activity.DeleteOlderThan(ctx, c.retention)
	if err != nil {
		return err
	}
	if deleted > 0 {
		c.log.Info("activity entries pruned",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", c.retention),
		)
	}
	return nil
}
