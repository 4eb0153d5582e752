package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aknopov/ballcube"
	"github.com/aknopov/ballcube/accuracy"
	"github.com/aknopov/ballcube/cmd/param"
	"github.com/aknopov/ballcube/monitor"
	"github.com/aknopov/fancylogger"
	"github.com/ericlagergren/decimal"
)

var (
	logger = fancylogger.NewLogger(os.Stderr, fancylogger.LiteFg)

	// Function substitution for unit tests
	selfProcess = monitor.Self
)

func main() {
	params, err := param.ParseParams(os.Args, func() { usage(os.Stderr) })
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		usage(os.Stderr)
		os.Exit(1)
	}

	if err := run(params, os.Stdout); err != nil {
		logger.Error().Msg(err.Error())
		os.Exit(2)
	}
}

func run(params *param.Params, out io.Writer) error {
	est := params.Config.Estimator()
	startTime := time.Now()

	if params.Precompute {
		if err := est.Precompute(params.Dim); err != nil {
			return err
		}
		logger.Info().Msgf("Terms for dimension %d are ready", params.Dim)
	} else {
		logVol, err := est.LogVolume(params.Dim, params.Scale)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, logVol)
	}
	logger.Debug().Dur("elapsed", time.Since(startTime)).Send()

	if params.Check && params.Scale != nil {
		printChecks(out, est, params.Dim, big2float(params.Scale))
	}

	if params.Usage != nil {
		proc := ballcube.AssumeOnErr(selfProcess, nil)
		if proc == nil {
			logger.Error().Msg("Resource usage is not available")
			return nil
		}
		monitor.PrintHeader(out, params.Usage)
		monitor.PrintValues(out, monitor.Measure(proc, params.Usage))
	}
	return nil
}

// Prints comparisons with the closed forms applicable to (n, s)
func printChecks(out io.Writer, est accuracy.Estimator, n int, s float64) {
	checked := false

	if s > float64(n)/3 {
		cmp, err := accuracy.CheckAsymptotic(est, n, s)
		printComparison(out, "asymptotic log-volume", cmp, err)
		checked = true
	}

	if 1 < s && s < 2 && n >= 2 {
		cmp, err := accuracy.CheckSmallScale(est, n, s, accuracy.DefaultTolerance)
		printComparison(out, "spherical caps volume", cmp, err)
		checked = true
	}

	if !checked {
		fmt.Fprintf(out, "No closed form applies to n=%d, s=%g\n", n, s)
	}
}

func printComparison(out io.Writer, title string, cmp accuracy.Comparison, err error) {
	if err != nil && !errors.Is(err, accuracy.ErrInaccurate) {
		fmt.Fprintf(out, "%s: %s\n", title, err)
		return
	}

	status := "ok"
	if err != nil {
		status = "inaccurate"
	}
	fmt.Fprintf(out, "%s: closed form %.12g, estimate %.12g, difference %.3e (%s)\n",
		title, cmp.Exact, cmp.Estimate, cmp.Diff(), status)
}

func big2float(val *decimal.Big) float64 {
	conv, _ := val.Float64()
	return conv
}
