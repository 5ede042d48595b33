package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/logger"
)

const (
	defaultActivityRetentionDays = 90
	defaultActivitySpec          = "@daily"
	defaultCommentSpec           = "@daily"
)

// Cleaner coordinates background maintenance tasks: pruning stale activity
// logs and removing comments whose host record has been deleted.
type Cleaner struct {
	db        *gorm.DB
	activity  *services.ActivityService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int

	activitySchedule string
	commentSchedule  string
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

// WithNow overrides the clock used for scheduling and cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithActivityRetentionDays adjusts how long activity logs are retained before cleanup.
func WithActivityRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithActivitySchedule overrides the cron specification for activity retention enforcement.
func WithActivitySchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.activitySchedule = spec
		}
	}
}

// WithCommentSchedule overrides the cron specification for orphaned comment cleanup.
func WithCommentSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.commentSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, activity *services.ActivityService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:               db,
		activity:         activity,
		now:              time.Now,
		retention:        defaultActivityRetentionDays,
		activitySchedule: defaultActivitySpec,
		commentSchedule:  defaultCommentSpec,
		log:              logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.activity != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.activity != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.activitySchedule, func() {
			ctx := context.Background()
			if _, err := c.activity.CleanupOlderThan(ctx, c.retention); err != nil {
				c.log.Warn("activity cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.commentSchedule, func() {
			ctx := context.Background()
			if _, err := CleanupOrphanedComments(ctx, c.db); err != nil {
				c.log.Warn("comment cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.activity != nil && c.retention > 0 {
		if _, err := c.activity.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := CleanupOrphanedComments(ctx, c.db); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// CleanupOrphanedComments removes comments attached to post records that no
// longer exist. Reply chains under an orphaned comment are removed by the
// same sweep on subsequent runs once their parents are gone, and directly
// here when their host is.
func CleanupOrphanedComments(ctx context.Context, db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, nil
	}

	result := db.WithContext(ctx).
		Where("commentable_type = ?", services.CommentableKindPosts).
		Where("commentable_id NOT IN (?)", db.Model(&models.Post{}).Select("id")).
		Delete(&models.Comment{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
