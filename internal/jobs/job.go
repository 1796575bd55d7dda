// Package jobs runs background work on a cron schedule.
package jobs

import "context"

// Job is a unit of background work.
type Job interface {
	// Name identifies the job in logs and for on-demand runs.
	Name() string

	// Schedule is a standard five-field cron expression. An empty schedule
	// registers the job for on-demand runs only.
	Schedule() string

	Execute(ctx context.Context) error
}
