// Package accuracy cross-checks the series estimator against independent formulas
// valid on restricted parameter ranges.
//
// Everything here is float64; the checks compare volumes, not log-volumes, so
// they are meaningful while the volumes are representable.
package accuracy

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/aknopov/ballcube/runner"
)

const (
	// Absolute volume tolerance of the small scale check
	DefaultTolerance = 1e-5
)

var (
	ErrAsymptoticRange = errors.New("asymptotic estimate needs s > n/3")
	ErrCapDimension    = errors.New("cap volume needs dimension of at least 2")
	ErrCapHeight       = errors.New("cap height should be within [0, 1]")
	ErrSmallScaleRange = errors.New("small scale check needs 1 < s < 2")
	ErrInaccurate      = errors.New("estimate differs from the closed form")
	ErrNoConvergence   = errors.New("incomplete beta function did not converge")
)

// Source of log-volume estimates
type Estimator interface {
	LogVolumeFloat(n int, s float64) (float64, error)
}

// Volume comparison for one dimension and scale
type Comparison struct {
	N        int
	S        float64
	Exact    float64
	Estimate float64
}

// Absolute difference of volumes
func (c Comparison) Diff() float64 {
	return math.Abs(c.Exact - c.Estimate)
}

// Log-volume of the unit n-ball
func LogBallVolume(n int) float64 {
	fn := float64(n)
	return fn/2*math.Log(math.Pi) - lgamma(fn/2+1)
}

// Asymptotic estimate of log(vol(B_n(1) ∩ [-1/sqrt(s), 1/sqrt(s)]^n)) for s > n/3
// after Thm 3 of https://eprint.iacr.org/2017/155.pdf (balanced boxes).
func AsymptoticEstimate(n int, s float64) (float64, error) {
	fn := float64(n)
	if !(s > fn/3) {
		return 0, fmt.Errorf("%w (n=%d, s=%g)", ErrAsymptoticRange, n, s)
	}

	logBox := fn * math.Log(2/math.Sqrt(s))
	mean := fn / (3 * s)
	variance := 4 * fn / (45 * s * s)
	y := (1 - mean) / variance
	prob := (1 + math.Erf(y/math.Sqrt2)) / 2

	return logBox + math.Log(prob), nil
}

// Volume of a cap of height `h` of the unit n-ball, i.e. the part cut off by a
// hyperplane at distance 1-h from the centre:
//
//	V_n I_{sin²φ}((n+1)/2, 1/2) / 2, h = 1 - cos φ
//
// (S. Li, Concise Formulas for the Area and Volume of a Hyperspherical Cap,
// Asian Journal of Mathematics & Statistics, 4: 66-70)
func HypersphericalCapVolume(n int, h float64) (float64, error) {
	if n < 2 {
		return 0, fmt.Errorf("%w: %d", ErrCapDimension, n)
	}
	if h < 0 || h > 1 {
		return 0, fmt.Errorf("%w: %g", ErrCapHeight, h)
	}

	phi := math.Acos(1 - h)
	sin := math.Sin(phi)
	reg := betaInc(sin*sin, (float64(n)+1)/2, 0.5)
	if math.IsNaN(reg) {
		return 0, fmt.Errorf("%w (n=%d, h=%g)", ErrNoConvergence, n, h)
	}

	return math.Exp(LogBallVolume(n)) * reg / 2, nil
}

// Exact intersection volume for 1 < s < 2 and n >= 2, when only the 2n caps
// behind the cube faces stick out and they do not overlap.
func SmallScaleVolume(n int, s float64) (float64, error) {
	if !(1 < s && s < 2) {
		return 0, fmt.Errorf("%w: %g", ErrSmallScaleRange, s)
	}

	capVol, err := HypersphericalCapVolume(n, 1-1/math.Sqrt(s))
	if err != nil {
		return 0, err
	}
	return math.Exp(LogBallVolume(n)) - 2*float64(n)*capVol, nil
}

// Compares the estimator with SmallScaleVolume;
// returns ErrInaccurate when the volumes differ by more than `tol`.
func CheckSmallScale(est Estimator, n int, s, tol float64) (Comparison, error) {
	cmp := Comparison{N: n, S: s}

	exact, err := SmallScaleVolume(n, s)
	if err != nil {
		return cmp, err
	}
	cmp.Exact = exact

	logVol, err := est.LogVolumeFloat(n, s)
	if err != nil {
		return cmp, err
	}
	cmp.Estimate = math.Exp(logVol)

	if !(cmp.Diff() <= tol) {
		return cmp, fmt.Errorf("%w: |%g - %g| > %g (n=%d, s=%g)", ErrInaccurate, cmp.Exact, cmp.Estimate, tol, n, s)
	}
	return cmp, nil
}

// Compares the estimator with AsymptoticEstimate, log-volumes
func CheckAsymptotic(est Estimator, n int, s float64) (Comparison, error) {
	cmp := Comparison{N: n, S: s}

	asym, err := AsymptoticEstimate(n, s)
	if err != nil {
		return cmp, err
	}
	cmp.Exact = asym

	cmp.Estimate, err = est.LogVolumeFloat(n, s)
	return cmp, err
}

// Result of the accurate range search
type Range struct {
	Dim   int     // largest dimension accurate for every scale
	Scale float64 // scale where the smallest dimension failed
	Found bool    // some check failed, otherwise Dim is the largest checked
}

// Increases dimension through `dims` for every scale until CheckSmallScale fails.
// The result holds the smallest last-good dimension over the scales, 0 if the
// very first dimension failed. Scales are checked concurrently.
func FindAccurateRange(est Estimator, scales []float64, dims []int, tol float64, concurrent int) Range {
	dims = slices.Clone(dims)
	slices.Sort(dims)

	lastGood := make([]int, len(scales))
	failed := make([]bool, len(scales))
	var lock sync.Mutex // `lastGood` and `failed` guard

	tasks := make([]runner.Task, len(scales))
	for i, s := range scales {
		tasks[i] = func() error {
			good, fail := sweepDims(est, s, dims, tol)
			lock.Lock()
			defer lock.Unlock()
			lastGood[i] = good
			failed[i] = fail
			return nil
		}
	}
	runner.RunEach(tasks, concurrent)

	var res Range
	if len(dims) > 0 {
		res.Dim = dims[len(dims)-1]
	}
	for i, s := range scales {
		if failed[i] && (!res.Found || lastGood[i] < res.Dim) {
			res = Range{Dim: lastGood[i], Scale: s, Found: true}
		}
	}
	return res
}

func sweepDims(est Estimator, s float64, dims []int, tol float64) (int, bool) {
	prev := 0
	for _, n := range dims {
		if _, err := CheckSmallScale(est, n, s, tol); err != nil {
			return prev, true
		}
		prev = n
	}
	return prev, false
}
