package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬┌─┌─┐┬┌┐┌
  └─┐├┴┐├┤ ││││
  └─┘┴ ┴└─┘┴┘└┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "skein",
		Short: "Tooling for the skein reactive runtime",
		Long: `Skein is a fine-grained reactive runtime for Go.

The skein CLI carries the runtime's operational tooling:

  • bench: engine micro-benchmarks (LIS paths, flush latency)
  • serve: run lisd, the offload daemon
  • version: build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		benchCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the skein ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}
