package engine

import (
	"context"
	"time"
)

// task is a cancellable one-shot or looping timer bound to a match. Cancel
// is idempotent and safe to call from the same context the timer fires in:
// the firing goroutine rechecks cancellation after taking the match lock, so
// a cancelled task never mutates state.
type task struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func newTask() *task {
	ctx, cancel := context.WithCancel(context.Background())
	return &task{ctx: ctx, cancel: cancel}
}

func (t *task) Cancel() {
	t.cancel()
}

func (t *task) cancelled() bool {
	return t.ctx.Err() != nil
}

func cancelTask(t *task) {
	if t != nil {
		t.cancel()
	}
}

// after runs fn with the match lock held once d has elapsed. The run is
// abandoned if the task was cancelled or the match started disposing in the
// meantime.
func (m *Match) after(d time.Duration, fn func()) *task {
	t := newTask()
	go func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-t.ctx.Done():
			return
		case <-timer.C:
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if t.cancelled() || m.disposing {
			return
		}
		fn()
	}()
	return t
}
