package offline

import (
	"context"
	"time"

	"finance_io/pkg/utils"

	"github.com/robfig/cron/v3"
)

const DefaultSyncSchedule = "@every 30s"

// StartSyncer flushes the queue of t on schedule until the returned cron is stopped.
func StartSyncer(t *Transport, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultSyncSchedule
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := t.Flush(ctx); err != nil {
			utils.Logger.Warnf("offline sync incomplete: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
