package lis

// Path selects which implementation Find uses.
type Path int

const (
	// PathAuto picks the small path for inputs at or below the threshold
	// and the large path above it. This is the default.
	PathAuto Path = iota

	// PathSmall forces the growable-slice implementation.
	PathSmall

	// PathLarge forces the fixed-buffer implementation.
	PathLarge
)

// DefaultThreshold is the input length at which PathAuto switches from the
// small path to the large path.
const DefaultThreshold = 64

// config holds the resolved Find configuration.
type config struct {
	threshold int
	path      Path
	scratch   *Scratch
}

// Option configures a single Find call.
type Option func(*config)

// WithThreshold sets the small/large crossover length for PathAuto.
// Non-positive values keep DefaultThreshold.
func WithThreshold(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithPath pins the implementation regardless of input length.
func WithPath(p Path) Option {
	return func(c *config) {
		c.path = p
	}
}

// WithScratch supplies reusable working memory for the large path.
// A scratch with capacity below 2*len(seq) is ignored and fresh buffers
// are allocated instead.
func WithScratch(s *Scratch) Option {
	return func(c *config) {
		c.scratch = s
	}
}

// Scratch is reusable working memory for the large path. One Scratch must
// not be shared by concurrent Find calls.
type Scratch struct {
	buf []uint32
}

// NewScratch returns a Scratch sized for inputs up to n elements.
func NewScratch(n int) *Scratch {
	if n < 0 {
		n = 0
	}
	return &Scratch{buf: make([]uint32, 2*n)}
}

// Cap reports the largest input length this Scratch covers without
// falling back to fresh allocation.
func (s *Scratch) Cap() int {
	if s == nil {
		return 0
	}
	return cap(s.buf) / 2
}

// buffers returns a 2n working slice, reusing the scratch when it is
// large enough.
func (s *Scratch) buffers(n int) []uint32 {
	need := 2 * n
	if s != nil && cap(s.buf) >= need {
		return s.buf[:need]
	}
	return make([]uint32, need)
}
