package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Runner cron 표현식 기반 작업 실행기
// cron launches every triggered job in its own goroutine, so two specs firing
// at the same instant would otherwise run concurrently against shared state;
// the mutex serializes invocations instead.
type Runner struct {
	cron    *cron.Cron
	timeout time.Duration
	mu      sync.Mutex
}

func NewRunner(loc *time.Location, timeout time.Duration) *Runner {
	return &Runner{
		cron:    cron.New(cron.WithLocation(loc)),
		timeout: timeout,
	}
}

func (r *Runner) Add(spec string, task Task) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.run(task)
	})
	if err != nil {
		return err
	}
	slog.Info("task registered", "task", task.Name(), "spec", spec)
	return nil
}

func (r *Runner) run(task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	slog.Info("running task", "task", task.Name())
	if err := task.Run(ctx); err != nil {
		slog.Error("task failed", "task", task.Name(), "error", err)
		return
	}
	slog.Info("task completed", "task", task.Name())
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop waits for a running task to finish before returning.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}
