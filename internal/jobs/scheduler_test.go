package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReindexer struct {
	calls int
	err   error
}

func (r *countingReindexer) Reindex(ctx context.Context) (int, error) {
	r.calls++
	return 3, r.err
}

func TestRegisterAndRunByName(t *testing.T) {
	s := NewScheduler()
	r := &countingReindexer{}

	require.NoError(t, s.RegisterJob(NewReindexJob(r, "0 3 * * *")))
	assert.Equal(t, []string{ReindexJobName}, s.Jobs())

	require.NoError(t, s.RunByName(context.Background(), ReindexJobName))
	assert.Equal(t, 1, r.calls)

	assert.Error(t, s.RunByName(context.Background(), "missing"))
}

func TestRunByNameReturnsJobError(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("meilisearch down")
	require.NoError(t, s.RegisterJob(NewReindexJob(&countingReindexer{err: boom}, "")))

	assert.ErrorIs(t, s.RunByName(context.Background(), ReindexJobName), boom)
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler()
	err := s.RegisterJob(NewReindexJob(&countingReindexer{}, "every tuesday"))
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.RegisterJob(NewReindexJob(&countingReindexer{}, "@daily")))
	s.Start()
	s.Stop(context.Background())
}
