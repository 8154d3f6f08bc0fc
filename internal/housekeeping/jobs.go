package housekeeping

import (
	"gorm.io/gorm"

	"github.com/edelguur/admin-backend/pkg/config"
	"github.com/edelguur/admin-backend/pkg/logger"
	"github.com/edelguur/admin-backend/pkg/outbox"
)

// DefaultJobs builds the retention jobs every deployment runs. maxAttempts
// must match the publisher's limit so only dead-lettered rows are purged.
func DefaultJobs(client txRunner, conn *gorm.DB, cfg config.HousekeepingConfig, maxAttempts int, logg *logger.Logger) ([]Job, error) {
	outboxJob, err := NewOutboxRetention(client, outbox.NewRepository(conn), cfg.OutboxRetentionDays, maxAttempts, logg)
	if err != nil {
		return nil, err
	}
	dlqJob, err := NewDLQRetention(client, outbox.NewDLQRepository(conn), cfg.DLQRetentionDays, logg)
	if err != nil {
		return nil, err
	}
	return []Job{outboxJob, dlqJob}, nil
}
