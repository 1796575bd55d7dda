package jobs

import (
	"context"
	"log"
)

const ReindexJobName = "search-reindex"

// Reindexer rebuilds the search index from the database.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// ReindexJob pushes every announcement to the search index again so the
// index recovers from missed writes.
type ReindexJob struct {
	reindexer Reindexer
	schedule  string
}

func NewReindexJob(reindexer Reindexer, schedule string) *ReindexJob {
	return &ReindexJob{reindexer: reindexer, schedule: schedule}
}

func (j *ReindexJob) Name() string     { return ReindexJobName }
func (j *ReindexJob) Schedule() string { return j.schedule }

func (j *ReindexJob) Execute(ctx context.Context) error {
	n, err := j.reindexer.Reindex(ctx)
	if err != nil {
		return err
	}
	log.Printf("[%s] indexed %d announcements", j.Name(), n)
	return nil
}
