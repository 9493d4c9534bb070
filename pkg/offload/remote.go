package offload

import (
	"context"
	"errors"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Remote computes over a websocket connection to a lisd daemon. Calls are
// serialized on the single connection; responses are matched by request ID
// and stale frames from timed-out calls are skipped.
type Remote struct {
	cfg  config
	conn *websocket.Conn

	// mu serializes write-then-read request cycles on the connection.
	mu     sync.Mutex
	nextID atomic.Uint64
	closed atomic.Bool
}

// Dial connects to a daemon's offload endpoint, e.g.
// "ws://localhost:7430/offload".
func Dial(ctx context.Context, url string, opts ...Option) (*Remote, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.timeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, newError(KindTransport, "remote.dial", err)
	}
	return &Remote{cfg: cfg, conn: conn}, nil
}

// Compute transfers buf to the daemon and waits for its response. Inputs
// the engine would reject (non-finite values) resolve to an empty result
// locally, keeping the remote channel's semantics identical to the
// in-process one.
func (r *Remote) Compute(ctx context.Context, buf *Buffer) ([]int, error) {
	positions, err := buf.take()
	if err != nil {
		return nil, newError(KindTransfer, "remote.compute", err)
	}
	if r.closed.Load() {
		return nil, newError(KindClosed, "remote.compute", ErrClosed)
	}
	for _, v := range positions {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID.Add(1)
	deadline := deadlineFor(ctx, r.cfg.timeout)

	r.conn.SetWriteDeadline(deadline)
	if err := r.conn.WriteJSON(Request{ID: id, Positions: positions}); err != nil {
		return nil, r.transportError("remote.compute", err)
	}

	for {
		r.conn.SetReadDeadline(deadline)
		var resp Response
		if err := r.conn.ReadJSON(&resp); err != nil {
			return nil, r.transportError("remote.compute", err)
		}
		if resp.ID != id {
			// Leftover answer to a call that already timed out.
			r.cfg.logger.Debug("offload remote skipped stale frame",
				"got", resp.ID, "want", id)
			continue
		}
		if resp.Error != "" {
			return nil, newError(KindCompute, "remote.compute", errors.New(resp.Error))
		}
		return resp.Indices, nil
	}
}

// Close sends a normal closure and drops the connection. Idempotent.
func (r *Remote) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.conn.SetWriteDeadline(time.Now().Add(time.Second))
	r.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return r.conn.Close()
}

// transportError classifies a connection failure, surfacing deadline
// expiries as timeouts.
func (r *Remote) transportError(op string, err error) *Error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return newError(KindTimeout, op, ErrTimeout)
	}
	return newError(KindTransport, op, err)
}
