// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/geogroups/internal/domain/models"
	"go.uber.org/zap"
)

// GroupSource lists every group.
type GroupSource interface {
	All(ctx context.Context) ([]models.Group, error)
}

// GroupIndexer replaces the whole search index.
type GroupIndexer interface {
	Rebuild(groups []models.Group) error
}

// SearchResyncJob creates a job that rebuilds the group search index from
// the database. It repairs drift from writes that bypass the handlers
// (shell edits, restores) and from index updates that failed after a
// successful database write.
func SearchResyncJob(groups GroupSource, index GroupIndexer, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "search-resync",
		Interval: interval,
		Run: func(ctx context.Context) error {
			all, err := groups.All(ctx)
			if err != nil {
				return err
			}
			if err := index.Rebuild(all); err != nil {
				return err
			}
			logger.Debug("search index resynced", zap.Int("groups", len(all)))
			return nil
		},
	}
}
