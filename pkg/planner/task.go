package planner

import "context"

// Task is the handle of one outstanding generation request.
type Task struct {
	PlanID string

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func newTask(id string, cancel context.CancelFunc) *Task {
	return &Task{PlanID: id, cancel: cancel, done: make(chan struct{})}
}

// Cancel aborts the request. The Plan settles to error.
func (t *Task) Cancel() { t.cancel() }

// Done is closed once the Plan has left the generating state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the request settles and returns its error, if any.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Err is the settled error. Only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}
