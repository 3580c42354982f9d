package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"
)

// Task is a unit of periodic work
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs each task on its own ticker. A firing that outlives the
// interval does not delay the next one; firings may overlap.
type Scheduler struct {
	tasks      []Task
	timeout    time.Duration
	runOnStart bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a scheduler. timeout bounds every firing; zero means no bound.
func New(timeout time.Duration, runOnStart bool, tasks ...Task) *Scheduler {
	return &Scheduler{tasks: tasks, timeout: timeout, runOnStart: runOnStart}
}

// Start launches every task. It fails when a task is malformed or the
// scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, task := range s.tasks {
		if task.Interval <= 0 || task.Run == nil {
			return fmt.Errorf("scheduler: task %q: %w", task.Name, auctionerrors.ErrInvalidConfig)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler: already started")
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, task)
	}

	utils.Info("Scheduler started", map[string]any{"tasks": len(s.tasks), "run_on_start": s.runOnStart})
	return nil
}

// Stop cancels running firings and waits for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	utils.Info("Scheduler stopped", nil)
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.fire(ctx, task)
	}

	for {
		select {
		case <-ticker.C:
			s.fire(ctx, task)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, task Task) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		runCtx := ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		err := task.Run(runCtx)
		fields := map[string]any{
			"task":     task.Name,
			"duration": time.Since(start).String(),
		}
		if err != nil {
			fields["error"] = err.Error()
			utils.Error("Scheduled task failed", fields)
			return
		}
		utils.Debug("Scheduled task finished", fields)
	}()
}
