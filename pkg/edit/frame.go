package edit

// Scheduler queues work to run after the next render commit.
type Scheduler interface {
	Defer(fn func())
}

// FrameQueue is a Scheduler driven by the renderer: tasks deferred during a
// frame run only when Flush is called after that frame has been rendered.
// It is not safe for concurrent use; the Editor serialises access.
type FrameQueue struct {
	pending []func()
}

// Defer adds fn to the queue for the next flush.
func (q *FrameQueue) Defer(fn func()) {
	q.pending = append(q.pending, fn)
}

// Pending returns the number of queued tasks.
func (q *FrameQueue) Pending() int { return len(q.pending) }

// Flush runs the tasks that were queued before the call, in order, and returns
// how many ran. Tasks deferred while flushing wait for the following frame.
func (q *FrameQueue) Flush() int {
	tasks := q.pending
	q.pending = nil
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}
