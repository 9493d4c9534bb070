package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/skein-dev/skein/pkg/lis"
	"github.com/skein-dev/skein/pkg/skein"
)

func benchCmd() *cobra.Command {
	var (
		iters int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run engine micro-benchmarks",
		Long: `Run micro-benchmarks over the LIS engine and the reactive core.

Each benchmark reports wall-clock latency percentiles sampled with
tachymeter. Position sequences are generated from a fixed seed so runs
are comparable across machines and builds.

Examples:
  skein bench
  skein bench --iterations=1000
  skein bench --seed=42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(iters, seed)
		},
	}

	cmd.Flags().IntVarP(&iters, "iterations", "n", 200, "Samples per benchmark")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for generated sequences")

	return cmd
}

func runBench(iters int, seed int64) error {
	if iters <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", iters)
	}

	benchFind(iters, seed)
	benchPropagate(iters)
	return nil
}

// benchFind samples the LIS engine across input sizes, with and without a
// reused scratch buffer.
func benchFind(iters int, seed int64) {
	tbl := table.NewWriter()
	tbl.SetTitle("LIS Engine")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, n := range []int{64, 1024, 16384} {
		positions := shuffledPositions(n, seed)

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			start := time.Now()
			lis.Find(positions)
			tach.AddTime(time.Since(start))
		}
		appendCalc(tbl, fmt.Sprintf("find: %s positions", humanize.Comma(int64(n))), tach)

		// The scratch only serves the large path, so pin it; PathAuto would
		// route n at or below the threshold around the scratch entirely.
		scratch := lis.NewScratch(n)
		tach = tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			start := time.Now()
			lis.Find(positions, lis.WithPath(lis.PathLarge), lis.WithScratch(scratch))
			tach.AddTime(time.Since(start))
		}
		appendCalc(tbl, fmt.Sprintf("find+scratch: %s positions", humanize.Comma(int64(n))), tach)
	}

	tbl.Render()
}

// benchPropagate samples write-to-flush latency across graph shapes:
// w independent memo chains of depth h fanning out from one source cell,
// each chain terminated by a computation.
func benchPropagate(iters int) {
	tbl := table.NewWriter()
	tbl.SetTitle("Reactive Core")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range []int{1, 10, 100} {
		for _, h := range []int{1, 10, 100} {
			rt := skein.New()

			var src *skein.Cell[int]
			root := rt.Root(func() {
				src = skein.NewCell(rt, 1)
				for i := 0; i < w; i++ {
					last := src.Get
					for j := 0; j < h; j++ {
						prev := last
						last = skein.NewMemo(rt, func() int { return prev() + 1 }).Get
					}
					final := last
					skein.NewComputation(rt, func() skein.Cleanup {
						final()
						return nil
					})
				}
			})

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set(src.Peek() + 1)
				tach.AddTime(time.Since(start))
			}
			appendCalc(tbl, fmt.Sprintf("propagate: %d x %d", w, h), tach)

			root.Dispose()
		}
	}

	tbl.Render()
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRows([]table.Row{
		{name, calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max},
	})
}

// shuffledPositions builds a permuted position array with a sprinkling of
// skip sentinels, the shape the reconciler feeds the engine.
func shuffledPositions(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))

	positions := make([]float64, n)
	for i := range positions {
		positions[i] = float64(i)
	}
	rng.Shuffle(n, func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	for i := 0; i < n/8; i++ {
		positions[rng.Intn(n)] = lis.Skip
	}
	return positions
}
