package keyed

import "errors"

// Structural errors. Mount fails fast on an unusable wiring instead of
// limping along with a half-built table.
var (
	// ErrNilRuntime indicates Mount was called without a runtime.
	ErrNilRuntime = errors.New("keyed: nil runtime")

	// ErrNilContainer indicates Mount was called without a container.
	ErrNilContainer = errors.New("keyed: nil container")

	// ErrNilSource indicates Mount was called without a source function.
	ErrNilSource = errors.New("keyed: nil source function")

	// ErrNilKeyFunc indicates Mount was called without a key function.
	ErrNilKeyFunc = errors.New("keyed: nil key function")

	// ErrNilRender indicates Mount was called without a render callback.
	ErrNilRender = errors.New("keyed: nil render callback")

	// ErrNilNode indicates a render callback returned nil. Raised from the
	// update cycle that hit it and delivered like any computation error.
	ErrNilNode = errors.New("keyed: render returned nil node")
)
