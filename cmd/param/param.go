// Package param parses command lines of the ballcube tools.
package param

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aknopov/ballcube"
	"github.com/aknopov/ballcube/monitor"
	"github.com/ericlagergren/decimal"
)

var (
	ErrNoDimension = errors.New("dimension is missing")
	ErrNoScale     = errors.New("scale is missing")
	ErrBadScale    = errors.New("invalid scale")
	ErrBadRange    = errors.New("invalid range")
)

// Parameters of one estimation
type Params struct {
	Dim        int
	Scale      *decimal.Big
	Config     ballcube.Config
	Precompute bool // only fill the cache
	Check      bool // print cross checks
	Usage      monitor.ParamList // nil - don't report resource usage
}

// Parameters of the accurate range search
type SweepParams struct {
	Scales     []float64
	Dims       []int
	Tolerance  float64
	Concurrent int
	Config     ballcube.Config
}

type configFlags struct {
	flagSet    *flag.FlagSet
	configFile string
	cfg        ballcube.Config
}

// Registers estimator flags; config file values are overridden by explicit flags
func addConfigFlags(flagSet *flag.FlagSet) *configFlags {
	cf := &configFlags{flagSet: flagSet}
	flagSet.StringVar(&cf.configFile, "config", "", "")
	flagSet.IntVar(&cf.cfg.Precision, "prec", 0, "")
	flagSet.IntVar(&cf.cfg.Terms, "terms", 0, "")
	flagSet.StringVar(&cf.cfg.CacheDir, "cache", "", "")
	flagSet.BoolVar(&cf.cfg.NoCache, "nocache", false, "")
	flagSet.BoolVar(&cf.cfg.Verbose, "verbose", false, "")
	return cf
}

func (cf *configFlags) resolve() (ballcube.Config, error) {
	if cf.configFile == "" {
		return cf.cfg, cf.cfg.Validate()
	}

	cfg, err := ballcube.LoadConfig(cf.configFile)
	if err != nil {
		return cfg, err
	}

	cf.flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "prec":
			cfg.Precision = cf.cfg.Precision
		case "terms":
			cfg.Terms = cf.cfg.Terms
		case "cache":
			cfg.CacheDir = cf.cfg.CacheDir
		case "nocache":
			cfg.NoCache = cf.cfg.NoCache
		case "verbose":
			cfg.Verbose = cf.cfg.Verbose
		}
	})
	return cfg, cfg.Validate()
}

// Parses command line of the estimator
func ParseParams(args []string, usage func()) (*Params, error) {
	progName := filepath.Base(args[0])
	flagSet := flag.NewFlagSet(progName, flag.ContinueOnError)
	flagSet.Usage = usage

	var params Params
	var scaleText, usageText string
	var showUsage bool
	flagSet.IntVar(&params.Dim, "n", 0, "")
	flagSet.StringVar(&scaleText, "s", "", "")
	flagSet.BoolVar(&params.Precompute, "precompute", false, "")
	flagSet.BoolVar(&params.Check, "check", false, "")
	flagSet.BoolVar(&showUsage, "usage", false, "")
	flagSet.StringVar(&usageText, "params", "", "")
	cf := addConfigFlags(flagSet)

	err := flagSet.Parse(args[1:])
	if err != nil {
		return nil, err
	}

	if params.Dim == 0 {
		return nil, ErrNoDimension
	}
	if !params.Precompute {
		if scaleText == "" {
			return nil, ErrNoScale
		}
		scale, err := ballcube.ParseScale(scaleText)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadScale, err)
		}
		params.Scale = scale
	}
	if showUsage {
		params.Usage = monitor.AllParams
		if usageText != "" {
			params.Usage = monitor.ParseParamList(usageText)
		}
	}

	if params.Config, err = cf.resolve(); err != nil {
		return nil, err
	}
	return &params, nil
}

// Parses command line of the accurate range search
func ParseSweepParams(args []string, usage func()) (*SweepParams, error) {
	progName := filepath.Base(args[0])
	flagSet := flag.NewFlagSet(progName, flag.ContinueOnError)
	flagSet.Usage = usage

	params := SweepParams{}
	var scalesText, dimsText string
	flagSet.StringVar(&scalesText, "scales", "1.05:1.95:0.05", "")
	flagSet.StringVar(&dimsText, "dims", "200:350:5", "")
	flagSet.Float64Var(&params.Tolerance, "tol", 1e-5, "")
	flagSet.IntVar(&params.Concurrent, "c", 4, "")
	cf := addConfigFlags(flagSet)

	err := flagSet.Parse(args[1:])
	if err != nil {
		return nil, err
	}

	if params.Scales, err = parseFloatRange(scalesText); err != nil {
		return nil, err
	}
	if params.Dims, err = parseIntRange(dimsText); err != nil {
		return nil, err
	}
	if params.Config, err = cf.resolve(); err != nil {
		return nil, err
	}
	return &params, nil
}

// "from:to:step" or comma separated list
func parseIntRange(text string) ([]int, error) {
	parts := strings.Split(text, ":")
	if len(parts) == 3 {
		bounds := make([]int, 3)
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrBadRange, text, err)
			}
			bounds[i] = v
		}
		if bounds[2] <= 0 || bounds[1] < bounds[0] {
			return nil, fmt.Errorf("%w %q", ErrBadRange, text)
		}
		vals := make([]int, 0)
		for v := bounds[0]; v <= bounds[1]; v += bounds[2] {
			vals = append(vals, v)
		}
		return vals, nil
	}

	vals := make([]int, 0)
	for _, p := range strings.Split(text, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrBadRange, text, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// "from:to:step" or comma separated list; the upper bound is included up to rounding
func parseFloatRange(text string) ([]float64, error) {
	parts := strings.Split(text, ":")
	if len(parts) == 3 {
		bounds := make([]float64, 3)
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrBadRange, text, err)
			}
			bounds[i] = v
		}
		if bounds[2] <= 0 || bounds[1] < bounds[0] {
			return nil, fmt.Errorf("%w %q", ErrBadRange, text)
		}
		vals := make([]float64, 0)
		for i := 0; ; i++ {
			v := bounds[0] + float64(i)*bounds[2]
			if v > bounds[1]+bounds[2]/2 {
				break
			}
			vals = append(vals, v)
		}
		return vals, nil
	}

	vals := make([]float64, 0)
	for _, p := range strings.Split(text, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrBadRange, text, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
