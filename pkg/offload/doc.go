// Package offload runs the heaviest subsequence computations off the
// caller's goroutine through an isolated, message-passing channel.
//
// A Channel receives an ownership-transferred Buffer of positions and
// returns either the ordered index list of a longest increasing
// subsequence or a structured error. Hand-off failures (an empty or
// already transferred buffer) surface synchronously; any other failure
// resolves to an *Error with a distinguishing Kind. A call never stays
// pending past its deadline.
//
// # Implementations
//
// Isolate owns a single worker goroutine in-process:
//
//	ch := offload.NewIsolate(offload.WithTimeout(time.Second))
//	defer ch.Close()
//
//	indices, err := ch.Compute(ctx, offload.NewBuffer(positions))
//
// Remote speaks the same contract to a lisd daemon over a websocket:
//
//	ch, err := offload.Dial(ctx, "ws://localhost:7430/offload")
//
// # Buffer Ownership
//
// NewBuffer takes the slice without copying; the caller must not touch it
// afterwards. Compute consumes the buffer, and transferring it twice fails
// with ErrBufferMoved. This keeps exactly one owner for the data at any
// moment, on either side of the channel.
package offload
