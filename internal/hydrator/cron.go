package hydrator

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yourorg/openhouse-api/internal/logger"
)

// Schedule registers a periodic full refetch. The caller starts and stops the
// returned cron. Overlapping runs are skipped.
func (h *Hydrator) Schedule(spec string, timeout time.Duration) (*cron.Cron, error) {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		h.Refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", spec, err)
	}
	logger.Log.Infof("scheduled listing refresh %q", spec)
	return c, nil
}
