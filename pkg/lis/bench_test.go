package lis

import (
	"math/rand"
	"testing"
)

func benchInput(n int) []float64 {
	rng := rand.New(rand.NewSource(42))
	seq := make([]float64, n)
	perm := rng.Perm(n)
	for i := range seq {
		if rng.Float64() < 0.1 {
			seq[i] = Skip
		} else {
			seq[i] = float64(perm[i])
		}
	}
	return seq
}

func BenchmarkFind_Small64(b *testing.B) {
	seq := benchInput(64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Find(seq, WithPath(PathSmall))
	}
}

func BenchmarkFind_Large1K(b *testing.B) {
	seq := benchInput(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Find(seq, WithPath(PathLarge))
	}
}

func BenchmarkFind_Large1KScratch(b *testing.B) {
	seq := benchInput(1024)
	sc := NewScratch(1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Find(seq, WithPath(PathLarge), WithScratch(sc))
	}
}

func BenchmarkFind_Large64K(b *testing.B) {
	seq := benchInput(65536)
	sc := NewScratch(65536)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Find(seq, WithPath(PathLarge), WithScratch(sc))
	}
}
