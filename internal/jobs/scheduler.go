package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

// RegisterJob adds job and schedules it when it has a cron expression.
func (s *Scheduler) RegisterJob(job Job) error {
	schedule := job.Schedule()
	if schedule != "" {
		if _, err := s.cron.AddFunc(schedule, func() { s.run(context.Background(), job) }); err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
		}
		log.Printf("[%s] scheduled with cron: %s", job.Name(), schedule)
	} else {
		log.Printf("[%s] registered as on-demand job", job.Name())
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	log.Printf("[%s] starting", job.Name())
	if err := job.Execute(ctx); err != nil {
		log.Printf("[%s] failed: %v", job.Name(), err)
		return err
	}
	log.Printf("[%s] completed", job.Name())
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("Job scheduler started with %d jobs", len(s.jobs))
}

// Stop halts scheduling and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	log.Println("Job scheduler stopped")
}

// RunByName executes a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return s.run(ctx, job)
		}
	}
	return fmt.Errorf("job %q not found", name)
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
