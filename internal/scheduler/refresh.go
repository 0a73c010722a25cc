// Package scheduler re-runs analyses on a cron schedule so snapshots never
// drift past the staleness window unattended.
package scheduler

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"spotlyvf/internal/app"
)

// StartRefreshScheduler runs the stale-analysis refresh on the given cron
// expression (standard 5-field: minute hour day-of-month month day-of-week).
// Examples: "0 3 * * *" (daily 3am), "0 */6 * * *" (every 6 hours).
// An empty schedule disables the job.
func StartRefreshScheduler(ctx context.Context, schedule string, service *app.Service) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Analysis refresh disabled (refresh_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid refresh_schedule '%s': %v — refresh disabled", schedule, err)
		return
	}

	log.Printf("Analysis refresh scheduled (cron: %s)", schedule)

	go func() {
		for {
			now := time.Now()
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next analysis refresh at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			refreshed, err := service.RefreshStale(ctx)
			if err != nil {
				log.Printf("Analysis refresh error: %v", err)
			}
			log.Printf("Analysis refresh complete refreshed=%d", refreshed)
		}
	}()
}
