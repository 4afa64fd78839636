package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunner_RunsJobsUntilStopped(t *testing.T) {
	var n atomic.Int32
	rn := NewRunner(zap.NewNop(), Job{
		Name:     "count",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			n.Add(1)
			return nil
		},
	})

	rn.Start(context.Background())
	require.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, 5*time.Millisecond)
	rn.Stop()

	after := n.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, n.Load(), "no runs after Stop")
}

func TestRunner_JobErrorDoesNotStopLoop(t *testing.T) {
	var n atomic.Int32
	rn := NewRunner(zap.NewNop(), Job{
		Name:     "fail",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			n.Add(1)
			return errors.New("boom")
		},
	})

	rn.Start(context.Background())
	defer rn.Stop()
	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestRunner_StopWithoutStart(t *testing.T) {
	rn := NewRunner(zap.NewNop())
	rn.Stop()
}

type fakeGroups struct {
	groups []models.Group
	err    error
}

func (f fakeGroups) All(context.Context) ([]models.Group, error) { return f.groups, f.err }

type fakeIndex struct {
	got []models.Group
}

func (f *fakeIndex) Rebuild(groups []models.Group) error {
	f.got = groups
	return nil
}

func TestSearchResyncJob(t *testing.T) {
	src := fakeGroups{groups: []models.Group{{Slug: "a"}, {Slug: "b"}}}
	idx := &fakeIndex{}
	job := SearchResyncJob(src, idx, zap.NewNop(), time.Minute)

	assert.Equal(t, "search-resync", job.Name)
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, idx.got, 2)
}

func TestSearchResyncJob_SourceError(t *testing.T) {
	idx := &fakeIndex{}
	job := SearchResyncJob(fakeGroups{err: errors.New("db down")}, idx, zap.NewNop(), time.Minute)

	require.Error(t, job.Run(context.Background()))
	assert.Nil(t, idx.got)
}
