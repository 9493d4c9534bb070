package offload

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/skein-dev/skein/pkg/lis"
)

// Isolate runs computations on a single dedicated worker goroutine. The
// worker owns each transferred buffer for the duration of its computation
// and communicates only by message passing.
type Isolate struct {
	cfg      config
	requests chan isolateRequest
	done     chan struct{}
	closed   atomic.Bool
}

type isolateRequest struct {
	positions []float64
	reply     chan isolateReply
}

type isolateReply struct {
	indices []int
	err     error
}

// NewIsolate starts the worker and returns the channel.
func NewIsolate(opts ...Option) *Isolate {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	i := &Isolate{
		cfg:      cfg,
		requests: make(chan isolateRequest),
		done:     make(chan struct{}),
	}
	go i.worker()
	return i
}

// Compute transfers buf to the worker and waits for the index list. The
// call resolves within the channel timeout or the context deadline,
// whichever is sooner; on expiry the result is abandoned.
func (i *Isolate) Compute(ctx context.Context, buf *Buffer) ([]int, error) {
	positions, err := buf.take()
	if err != nil {
		return nil, newError(KindTransfer, "isolate.compute", err)
	}
	if i.closed.Load() {
		return nil, newError(KindClosed, "isolate.compute", ErrClosed)
	}

	timer := time.NewTimer(time.Until(deadlineFor(ctx, i.cfg.timeout)))
	defer timer.Stop()

	// reply has capacity 1 so an abandoned worker result never blocks the
	// worker loop.
	req := isolateRequest{positions: positions, reply: make(chan isolateReply, 1)}

	select {
	case i.requests <- req:
	case <-timer.C:
		return nil, newError(KindTimeout, "isolate.compute", ErrTimeout)
	case <-ctx.Done():
		return nil, newError(KindTimeout, "isolate.compute", ctx.Err())
	case <-i.done:
		return nil, newError(KindClosed, "isolate.compute", ErrClosed)
	}

	select {
	case rep := <-req.reply:
		return rep.indices, rep.err
	case <-timer.C:
		return nil, newError(KindTimeout, "isolate.compute", ErrTimeout)
	case <-ctx.Done():
		return nil, newError(KindTimeout, "isolate.compute", ctx.Err())
	case <-i.done:
		return nil, newError(KindClosed, "isolate.compute", ErrClosed)
	}
}

// Close stops the worker. Idempotent.
func (i *Isolate) Close() error {
	if i.closed.Swap(true) {
		return nil
	}
	close(i.done)
	return nil
}

// worker serves requests until Close.
func (i *Isolate) worker() {
	for {
		select {
		case req := <-i.requests:
			req.reply <- i.run(req.positions)
		case <-i.done:
			return
		}
	}
}

// run executes one computation, converting a panic into a compute error so
// the worker loop survives anything.
func (i *Isolate) run(positions []float64) (rep isolateReply) {
	defer func() {
		if r := recover(); r != nil {
			i.cfg.logger.Error("offload worker recovered", "panic", r)
			rep = isolateReply{err: newError(KindCompute, "isolate.run", fmt.Errorf("worker panic: %v", r))}
		}
	}()

	rep.indices = lis.Find(positions, i.cfg.lisOpts...)
	return rep
}
