package generate

import "context"

// Task is a background load or run. Only one task per Runner is in flight.
type Task struct {
	done    chan struct{}
	summary Summary
	err     error
}

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes.
func (t *Task) Wait() (Summary, error) {
	<-t.done
	return t.summary, t.err
}

// Start runs req in the background. It returns ErrBusy without starting
// anything if another task is in flight.
func (r *Runner) Start(ctx context.Context, req Request, notify func(Status)) (*Task, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer r.busy.Store(false)
		t.summary, t.err = r.run(ctx, req, notify)
	}()
	return t, nil
}

// StartLoad reads a spreadsheet in the background.
func (r *Runner) StartLoad(path string) (*Task, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer r.busy.Store(false)
		t.err = r.load(path)
	}()
	return t, nil
}
