package offload

import (
	"errors"
	"fmt"
)

// Sentinel errors, matchable with errors.Is through the *Error wrapper.
var (
	// ErrClosed indicates the channel was closed before or during the call.
	ErrClosed = errors.New("offload: channel closed")

	// ErrTimeout indicates the call exceeded its deadline. The channel is
	// treated as failed for that call and the result, if any, is dropped.
	ErrTimeout = errors.New("offload: computation timed out")

	// ErrBufferMoved indicates a Buffer was transferred twice.
	ErrBufferMoved = errors.New("offload: buffer already transferred")

	// ErrEmptyBuffer indicates a nil or empty Buffer at hand-off.
	ErrEmptyBuffer = errors.New("offload: empty buffer")
)

// Kind classifies where in the call an offload failure happened.
type Kind int

const (
	// KindTransfer is a synchronous hand-off failure: the buffer was
	// empty or already moved.
	KindTransfer Kind = iota + 1

	// KindTimeout is a deadline expiry, from the configured timeout or the
	// caller's context.
	KindTimeout

	// KindClosed is a call against a closed channel.
	KindClosed

	// KindCompute is a failure inside the computation itself.
	KindCompute

	// KindTransport is a connection-level failure on a remote channel.
	KindTransport
)

// String returns the kind's wire-stable name.
func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindTimeout:
		return "timeout"
	case KindClosed:
		return "closed"
	case KindCompute:
		return "compute"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the structured failure every channel resolves to. Op names the
// failing operation, Err carries the cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("offload: %s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds a structured channel error.
func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
