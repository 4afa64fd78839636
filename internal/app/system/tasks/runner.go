// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named function run on a fixed interval.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per run; zero means Interval
	Run      func(ctx context.Context) error
}

// Runner runs Jobs in the background until Stop is called.
type Runner struct {
	log    *zap.Logger
	jobs   []Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner for jobs. Nothing runs until Start.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	return &Runner{log: logger, jobs: jobs}
}

// Start launches one goroutine per job. Each job waits one interval
// before its first run.
func (rn *Runner) Start(ctx context.Context) {
	ctx, rn.cancel = context.WithCancel(ctx)
	for _, j := range rn.jobs {
		if j.Interval <= 0 || j.Run == nil {
			rn.log.Warn("tasks: skipping job with no interval or func", zap.String("job", j.Name))
			continue
		}
		rn.wg.Add(1)
		go rn.loop(ctx, j)
	}
	rn.log.Info("tasks: runner started", zap.Int("jobs", len(rn.jobs)))
}

// Stop cancels every job and waits for in-flight runs to return.
func (rn *Runner) Stop() {
	if rn.cancel == nil {
		return
	}
	rn.cancel()
	rn.wg.Wait()
	rn.log.Info("tasks: runner stopped")
}

func (rn *Runner) loop(ctx context.Context, j Job) {
	defer rn.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rn.runOnce(ctx, j)
		}
	}
}

func (rn *Runner) runOnce(ctx context.Context, j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = j.Interval
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := j.Run(runCtx); err != nil {
		rn.log.Error("tasks: job failed", zap.String("job", j.Name), zap.Error(err))
		return
	}
	rn.log.Debug("tasks: job finished", zap.String("job", j.Name), zap.Duration("took", time.Since(start)))
}
