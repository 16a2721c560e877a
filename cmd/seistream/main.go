// Command seistream fetches scalar time series from a Valve service or a
// CSV file, splits them on data gaps, optionally resamples each segment
// onto a uniform grid, and writes the conditioned segments out as CSV.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
