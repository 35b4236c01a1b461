package cache

import (
	"context"
	"fmt"
	"time"

	"dahabiya-site/internal/logger"

	"github.com/robfig/cron/v3"
)

// SchedulePurge starts a cron job removing expired entries on the given
// schedule (standard cron spec or "@every <duration>"). Stop the returned
// scheduler on shutdown.
func SchedulePurge(c *Cache, spec string, log logger.Logger) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, err := c.PurgeExpired(ctx)
		if err != nil {
			log.Error(err, "cache purge failed")
			return
		}
		if n > 0 {
			log.Debug(fmt.Sprintf("purged %d expired cache entries", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid cache purge schedule %q: %w", spec, err)
	}
	scheduler.Start()
	return scheduler, nil
}
