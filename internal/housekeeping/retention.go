package housekeeping

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/logger"
)

const (
	OutboxRetentionJob = "outbox-retention"
	DLQRetentionJob    = "dlq-retention"

	defaultOutboxRetentionDays = 30
	defaultDLQRetentionDays    = 90
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPurger interface {
	DeletePublishedBefore(tx *gorm.DB, cutoff time.Time, maxAttempts int) (int64, error)
}

type dlqPurger interface {
	DeleteFailedBefore(tx *gorm.DB, cutoff time.Time) (int64, error)
}

type retentionJob struct {
	name  string
	db    txRunner
	days  int
	logg  *logger.Logger
	now   func() time.Time
	purge func(tx *gorm.DB, cutoff time.Time) (int64, error)
}

// NewOutboxRetention drops published outbox rows, and rows the publisher gave
// up on, once they are older than days.
func NewOutboxRetention(db txRunner, repo outboxPurger, days, maxAttempts int, logg *logger.Logger) (Job, error) {
	if repo == nil {
		return nil, errors.New("outbox repository required")
	}
	if days <= 0 {
		days = defaultOutboxRetentionDays
	}
	return newRetentionJob(OutboxRetentionJob, db, days, logg, func(tx *gorm.DB, cutoff time.Time) (int64, error) {
		return repo.DeletePublishedBefore(tx, cutoff, maxAttempts)
	})
}

// NewDLQRetention drops dead letters older than days.
func NewDLQRetention(db txRunner, repo dlqPurger, days int, logg *logger.Logger) (Job, error) {
	if repo == nil {
		return nil, errors.New("dlq repository required")
	}
	if days <= 0 {
		days = defaultDLQRetentionDays
	}
	return newRetentionJob(DLQRetentionJob, db, days, logg, repo.DeleteFailedBefore)
}

func newRetentionJob(name string, db txRunner, days int, logg *logger.Logger, purge func(*gorm.DB, time.Time) (int64, error)) (Job, error) {
	if db == nil {
		return nil, errors.New("db required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &retentionJob{name: name, db: db, days: days, logg: logg, now: time.Now, purge: purge}, nil
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	var removed int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.purge(tx, cutoff)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.days,
	}), "retention sweep done")
	return removed, nil
}
