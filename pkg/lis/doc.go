// Package lis computes longest strictly increasing subsequences over
// float64 slices using patience sorting with binary search.
//
// The package exists to answer one question for sequence reconciliation:
// given the old position of every surviving item, which items can stay
// where they are? Entries equal to Skip (-1) mark positions excluded from
// the search, typically items that have no previous position.
//
// # Usage
//
//	positions := []float64{3, lis.Skip, 0, 1, 4}
//	stable := lis.Find(positions)
//	// stable == [2, 3, 4] (values 0, 1, 4)
//
// Find returns the indices of one maximal strictly increasing subsequence,
// in ascending order. The result never includes a skipped position. A
// sequence containing NaN or an infinity is malformed and yields an empty
// result.
//
// # Implementations
//
// Two implementations share the same contract and O(n log n) bound. The
// small path uses growable int slices and wins on short inputs. The large
// path runs on fixed-width uint32 buffers that can be reused across calls
// through a Scratch, avoiding per-call allocation on hot reconciliation
// loops. Find selects between them by input length; WithPath pins one
// explicitly.
//
//	sc := lis.NewScratch(4096)
//	for _, seq := range sequences {
//	    keep := lis.Find(seq, lis.WithScratch(sc))
//	    // ...
//	}
package lis
