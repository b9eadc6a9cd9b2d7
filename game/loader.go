package game

import (
	"context"
	"log/slog"
)

// LoadTask is one asset to prepare before play starts. A failing task is
// logged and counted as finished; the game runs without that asset.
type LoadTask struct {
	Name string
	Run  func(ctx context.Context) error
}

type loadResult struct {
	name string
	err  error
}

// Loader runs load tasks in the background and reports progress to the tick.
// Tasks run once per process; later loads complete immediately.
type Loader struct {
	tasks   []LoadTask
	results chan loadResult
	done    int
	started bool
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewLoader creates a loader for the given tasks.
func NewLoader(logger *slog.Logger, tasks ...LoadTask) *Loader {
	return &Loader{
		tasks:   tasks,
		results: make(chan loadResult, len(tasks)),
		logger:  logger,
	}
}

// Start launches the tasks if they have not run yet.
func (l *Loader) Start(ctx context.Context) {
	if l.started {
		return
	}
	l.started = true
	ctx, l.cancel = context.WithCancel(ctx)
	for _, t := range l.tasks {
		go func(t LoadTask) {
			l.results <- loadResult{name: t.Name, err: t.Run(ctx)}
		}(t)
	}
}

// Poll drains finished tasks without blocking and returns progress in 0..100.
func (l *Loader) Poll() int {
	for {
		select {
		case r := <-l.results:
			l.done++
			if r.err != nil {
				l.logger.Warn("asset load failed", "asset", r.name, "error", r.err)
			} else {
				l.logger.Debug("asset loaded", "asset", r.name)
			}
		default:
			return l.Progress()
		}
	}
}

// Progress returns the last polled progress in 0..100.
func (l *Loader) Progress() int {
	if len(l.tasks) == 0 {
		return 100
	}
	return l.done * 100 / len(l.tasks)
}

// Close cancels tasks still running.
func (l *Loader) Close() {
	if l.cancel != nil {
		l.cancel()
	}
}
