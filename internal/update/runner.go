package update

import (
	"context"
	"errors"
)

// ErrRunnerStopped is returned by Submit after Stop, or once Run has
// returned because its context ended.
var ErrRunnerStopped = errors.New("update: runner stopped")

// Outcome is the reply to a submitted request.
type Outcome struct {
	Result Result
	Err    error
}

// Runner feeds submitted requests to an Executor one at a time, in
// submission order, from a single goroutine running Run.
type Runner struct {
	exec  *Executor
	queue *requestQueue
}

// NewRunner returns a Runner over e. Call Run to start processing.
func NewRunner(e *Executor) *Runner {
	return &Runner{exec: e, queue: newRequestQueue()}
}

// Submit queues req, to be applied under ctx. The returned channel receives
// exactly one Outcome; it is buffered, so nobody has to read it. A request
// whose ctx ends while queued fails with KindCancelled at its first
// operation.
func (r *Runner) Submit(ctx context.Context, req Request) (<-chan Outcome, error) {
	s := submission{ctx: ctx, req: req, done: make(chan Outcome, 1)}
	if !r.queue.Enqueue(s) {
		return nil, ErrRunnerStopped
	}
	return s.done, nil
}

// Pending returns the number of requests waiting to run.
func (r *Runner) Pending() int { return r.queue.Len() }

// Run processes submissions until Stop is called and the queue is empty,
// or until ctx ends. When ctx ends, requests still queued are answered
// with ErrRunnerStopped and Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	r.exec.logger.Info("runner starting")

	for {
		if s, ok := r.queue.TryDequeue(); ok {
			res, err := r.exec.Apply(s.ctx, s.req)
			s.done <- Outcome{Result: res, Err: err}
			continue
		}

		select {
		case <-ctx.Done():
			r.exec.logger.Info("runner stopping", "reason", "context done")
			r.queue.Close()
			for _, s := range r.queue.drain() {
				s.done <- Outcome{Err: ErrRunnerStopped}
			}
			return ctx.Err()
		case <-r.queue.Wait():
			if r.queue.Len() == 0 && r.closed() {
				r.exec.logger.Info("runner stopping", "reason", "stopped")
				return nil
			}
		}
	}
}

func (r *Runner) closed() bool {
	r.queue.mu.Lock()
	defer r.queue.mu.Unlock()
	return r.queue.closed
}

// Stop refuses further submissions. Run finishes the queued requests and
// returns.
func (r *Runner) Stop() {
	r.queue.Close()
}
