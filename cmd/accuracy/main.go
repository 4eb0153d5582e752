package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aknopov/ballcube/accuracy"
	"github.com/aknopov/ballcube/cmd/param"
	"github.com/aknopov/fancylogger"
)

var (
	logger = fancylogger.NewLogger(os.Stderr, fancylogger.LiteFg)
)

func main() {
	params, err := param.ParseSweepParams(os.Args, func() { usage(os.Stderr) })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		usage(os.Stderr)
		os.Exit(1)
	}

	report(os.Stdout, params, params.Config.Estimator())
}

// Runs the sweep and prints the accurate range
func report(out io.Writer, params *param.SweepParams, est accuracy.Estimator) accuracy.Range {
	logger.Info().Msgf("Checking %d scales over %d dimensions", len(params.Scales), len(params.Dims))

	startTime := time.Now()
	res := accuracy.FindAccurateRange(est, params.Scales, params.Dims, params.Tolerance, params.Concurrent)
	logger.Info().Dur("elapsed", time.Since(startTime)).Send()

	if res.Found {
		fmt.Fprintf(out, "Accurate up to dimension %d, first failure at scale %g\n", res.Dim, res.Scale)
	} else {
		fmt.Fprintf(out, "Accurate for all dimensions up to %d\n", res.Dim)
	}
	return res
}

func usage(out io.Writer) {
	fmt.Fprintf(out, `Finds the dimensions where the series estimate agrees with the spherical caps
formula for scales 1 < s < 2

Usage:
  %s [options]

Options:
  -scales LIST   "from:to:step" or comma separated scales (default "1.05:1.95:0.05")
  -dims LIST     "from:to:step" or comma separated dimensions (default "200:350:5")
  -tol T         volume tolerance (default 1e-5)
  -c N           scales checked concurrently (default 4)
  -prec P, -terms T, -cache DIR, -nocache, -config FILE, -verbose
                 estimator settings as for ballcube
`, os.Args[0])
}
