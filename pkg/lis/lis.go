package lis

import "math"

// Skip marks a position excluded from the subsequence search.
// Reconcilers use it for items that did not exist in the previous order.
const Skip = -1.0

// noIndex is the large path's "no predecessor" marker. It lives in the
// index buffers and is unrelated to the Skip value in the input.
const noIndex = ^uint32(0)

// Find returns the indices of one maximal strictly increasing subsequence
// of seq, in ascending order. Positions holding Skip are never part of the
// result. Inputs containing NaN or an infinity yield nil, as does an input
// with nothing to select.
//
// Both implementations run in O(n log n) time. See the package
// documentation for path selection and scratch reuse.
func Find(seq []float64, opts ...Option) []int {
	n := len(seq)
	if n == 0 {
		return nil
	}

	cfg := config{threshold: DefaultThreshold, path: PathAuto}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, v := range seq {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}

	path := cfg.path
	if path == PathAuto {
		if n <= cfg.threshold {
			path = PathSmall
		} else {
			path = PathLarge
		}
	}
	// The large path indexes with uint32; oversized inputs take the
	// small path regardless of selection.
	if path == PathLarge && n >= int(noIndex) {
		path = PathSmall
	}

	if path == PathSmall {
		return findSmall(seq)
	}
	return findLarge(seq, cfg.scratch)
}

// findSmall is the growable-slice implementation.
//
// tails[k] holds the index of the smallest value that can end an
// increasing run of length k+1. Each element either extends the longest
// run or replaces the first tail not below it, keeping every tail minimal.
// prev records the chain used to rebuild the winning run.
func findSmall(seq []float64) []int {
	prev := make([]int, len(seq))
	var tails []int

	for i, v := range seq {
		prev[i] = -1
		if v == Skip {
			continue
		}

		lo, hi := 0, len(tails)
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}

		if lo > 0 {
			prev[i] = tails[lo-1]
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	if len(tails) == 0 {
		return nil
	}

	out := make([]int, len(tails))
	at := tails[len(tails)-1]
	for k := len(tails) - 1; k >= 0; k-- {
		out[k] = at
		at = prev[at]
	}
	return out
}

// findLarge is the fixed-buffer implementation. It runs the same patience
// walk as findSmall on a single 2n uint32 buffer: the first half holds
// predecessor links, the second the tails. With a reused Scratch the call
// allocates only the result slice.
func findLarge(seq []float64, sc *Scratch) []int {
	n := len(seq)
	buf := sc.buffers(n)
	prev := buf[:n]
	tails := buf[n : 2*n]
	m := 0

	for i, v := range seq {
		prev[i] = noIndex
		if v == Skip {
			continue
		}

		lo, hi := 0, m
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}

		if lo > 0 {
			prev[i] = tails[lo-1]
		}
		tails[lo] = uint32(i)
		if lo == m {
			m++
		}
	}

	if m == 0 {
		return nil
	}

	out := make([]int, m)
	at := tails[m-1]
	for k := m - 1; k >= 0; k-- {
		out[k] = int(at)
		at = prev[at]
	}
	return out
}
