package offload

import (
	"context"
	"log/slog"
	"time"

	"github.com/skein-dev/skein/pkg/lis"
)

// DefaultTimeout bounds a Compute call when the caller sets nothing
// tighter.
const DefaultTimeout = 5 * time.Second

// Channel is an isolated executor for subsequence computations. Compute
// consumes the buffer and resolves within the channel's deadline, with the
// index list or a structured *Error.
type Channel interface {
	Compute(ctx context.Context, buf *Buffer) ([]int, error)

	// Close releases the channel. In-flight calls resolve as closed;
	// further calls fail immediately.
	Close() error
}

var (
	_ Channel = (*Isolate)(nil)
	_ Channel = (*Remote)(nil)
)

// config carries the knobs shared by channel implementations.
type config struct {
	timeout time.Duration
	logger  *slog.Logger
	lisOpts []lis.Option
}

func defaultConfig() config {
	return config{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
}

// Option configures a channel at construction.
type Option func(*config)

// WithTimeout sets the wall-clock budget per Compute call. Non-positive
// values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger routes channel diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFindOptions forwards engine options (path, threshold, scratch) to an
// in-process worker. Remote channels ignore it; the daemon picks its own.
func WithFindOptions(opts ...lis.Option) Option {
	return func(c *config) {
		c.lisOpts = append(c.lisOpts, opts...)
	}
}

// deadlineFor merges the configured timeout with the context's deadline,
// whichever is sooner.
func deadlineFor(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}
