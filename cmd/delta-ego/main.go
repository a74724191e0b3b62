/*
Package main is the entry point for the delta-ego CLI.

delta-ego searches a valence/arousal/dominance emotion catalogue and runs
an affective dynamics engine over the points an actor searches for.

Usage:
  delta-ego [command]

Available Commands:
  init          Create a default configuration file
  search        Find the emotion terms nearest to a VAD point
  analyze       Run the affective dynamics engine over a trajectory
  lookup        Find catalogue entries by word
  serve         Run the MCP server (stdio transport)
  benchmark     Compare KD-tree and linear-scan latency
  export-index  Export the validated catalogue
  verify        Verify configuration and catalogue
  history       Manage the search history log
  version       Show version information

Examples:
  # Nearest terms to a calm, content state
  delta-ego search -V 0.6 -A -0.4 -D 0.3 --catalogue ~/vad.tsv

  # Run as MCP server
  delta-ego serve
*/
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/khanglvm/delta-ego/internal/cli"
)

func main() {
	// A .env in the working directory may set DELTA_EGO_CONFIG or DELTA_EGO_CATALOGUE.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
		}
	}

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
