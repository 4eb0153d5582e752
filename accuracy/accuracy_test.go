package accuracy

import (
	"math"
	"testing"

	"github.com/aknopov/ballcube"
	"github.com/stretchr/testify/assert"
)

const (
	testPrec = 200
)

// Exact for n <= goodUpTo(s), wrong beyond
type fakeEstimator struct {
	goodUpTo func(s float64) int
}

func (fe fakeEstimator) LogVolumeFloat(n int, s float64) (float64, error) {
	v, err := SmallScaleVolume(n, s)
	if err != nil {
		return 0, err
	}
	if n > fe.goodUpTo(s) {
		v *= 2
	}
	return math.Log(v), nil
}

func TestIncompleteBeta(t *testing.T) {
	assertT := assert.New(t)

	assertT.InDelta(0.5, betaInc(0.5, 2, 2), 1e-14)
	assertT.InDelta(0.104, betaInc(0.2, 2, 2), 1e-14)
	assertT.Equal(0.0, betaInc(0, 3, 0.5))
	assertT.InDelta(1.0, betaInc(1, 3, 0.5), 1e-14)
	assertT.True(math.IsNaN(betaInc(-0.1, 1, 1)))
	assertT.True(math.IsNaN(betaInc(1.1, 1, 1)))
}

func TestCapVolume(t *testing.T) {
	assertT := assert.New(t)

	for _, h := range []float64{0.05, 0.3, 0.5, 0.9} {
		phi := math.Acos(1 - h)

		v2, err := HypersphericalCapVolume(2, h)
		assertT.NoError(err)
		assertT.InDelta(phi-math.Sin(phi)*math.Cos(phi), v2, 1e-12)

		v3, err := HypersphericalCapVolume(3, h)
		assertT.NoError(err)
		assertT.InDelta((2.0/3-math.Cos(phi)+math.Pow(math.Cos(phi), 3)/3)*math.Pi, v3, 1e-12)
	}

	v, err := HypersphericalCapVolume(5, 0)
	assertT.NoError(err)
	assertT.Equal(0.0, v)

	v, err = HypersphericalCapVolume(5, 1)
	assertT.NoError(err)
	assertT.InDelta(math.Exp(LogBallVolume(5))/2, v, 1e-12)

	_, err = HypersphericalCapVolume(1, 0.5)
	assertT.ErrorIs(err, ErrCapDimension)
	_, err = HypersphericalCapVolume(3, 1.5)
	assertT.ErrorIs(err, ErrCapHeight)
	_, err = HypersphericalCapVolume(3, -0.5)
	assertT.ErrorIs(err, ErrCapHeight)
}

func TestSmallScaleVolume(t *testing.T) {
	assertT := assert.New(t)

	a := 1 / math.Sqrt(1.5)
	disc := math.Pi - 4*(math.Acos(a)-a*math.Sqrt(1-a*a))

	v, err := SmallScaleVolume(2, 1.5)
	assertT.NoError(err)
	assertT.InDelta(disc, v, 1e-12)

	_, err = SmallScaleVolume(2, 2)
	assertT.ErrorIs(err, ErrSmallScaleRange)
	_, err = SmallScaleVolume(2, 1)
	assertT.ErrorIs(err, ErrSmallScaleRange)
}

func TestAsymptoticEstimate(t *testing.T) {
	assertT := assert.New(t)

	v, err := AsymptoticEstimate(20, 12)
	assertT.NoError(err)
	assertT.InDelta(-10.986122886681093, v, 1e-9)

	_, err = AsymptoticEstimate(9, 3)
	assertT.ErrorIs(err, ErrAsymptoticRange)
	_, err = AsymptoticEstimate(9, 1)
	assertT.ErrorIs(err, ErrAsymptoticRange)
}

func TestLogBallVolume(t *testing.T) {
	assertT := assert.New(t)

	assertT.InDelta(math.Log(2), LogBallVolume(1), 1e-15)
	assertT.InDelta(math.Log(math.Pi), LogBallVolume(2), 1e-15)
	assertT.InDelta(math.Log(4*math.Pi/3), LogBallVolume(3), 1e-15)
}

func TestSeriesAgainstCaps(t *testing.T) {
	assertT := assert.New(t)

	est := ballcube.New(ballcube.WithPrecision(testPrec), ballcube.WithTerms(1000))

	for _, tc := range []struct {
		n int
		s float64
	}{{3, 1.5}, {4, 1.8}, {5, 1.3}, {6, 1.9}} {
		cmp, err := CheckSmallScale(est, tc.n, tc.s, DefaultTolerance)
		assertT.NoError(err, "n=%d, s=%g", tc.n, tc.s)
		assertT.Less(cmp.Diff(), 1e-7)
	}
}

func TestSeriesAgainstAsymptotic(t *testing.T) {
	assertT := assert.New(t)

	est := ballcube.New(ballcube.WithPrecision(testPrec), ballcube.WithTerms(500))

	for _, tc := range []struct {
		n   int
		s   float64
		tol float64
	}{{3, 2.5, 1e-2}, {10, 6, 1e-2}, {20, 12, 1e-3}} {
		cmp, err := CheckAsymptotic(est, tc.n, tc.s)
		assertT.NoError(err)
		assertT.Less(cmp.Diff(), tc.tol, "n=%d, s=%g", tc.n, tc.s)
	}

	_, err := CheckAsymptotic(est, 9, 2)
	assertT.ErrorIs(err, ErrAsymptoticRange)
}

func TestCheckSmallScaleFailure(t *testing.T) {
	assertT := assert.New(t)

	est := fakeEstimator{goodUpTo: func(float64) int { return 3 }}

	_, err := CheckSmallScale(est, 3, 1.5, DefaultTolerance)
	assertT.NoError(err)

	cmp, err := CheckSmallScale(est, 4, 1.5, DefaultTolerance)
	assertT.ErrorIs(err, ErrInaccurate)
	assertT.InDelta(cmp.Exact, cmp.Estimate/2, 1e-12)

	_, err = CheckSmallScale(est, 4, 2.5, DefaultTolerance)
	assertT.ErrorIs(err, ErrSmallScaleRange)
}

func TestFindAccurateRange(t *testing.T) {
	assertT := assert.New(t)

	est := fakeEstimator{goodUpTo: func(s float64) int {
		if s < 1.5 {
			return 8
		}
		return 5
	}}
	dims := []int{10, 2, 3, 4, 5, 6, 7, 8, 9}

	res := FindAccurateRange(est, []float64{1.2, 1.7, 1.4}, dims, DefaultTolerance, 2)
	assertT.Equal(Range{Dim: 5, Scale: 1.7, Found: true}, res)

	res = FindAccurateRange(est, []float64{1.2}, []int{3, 2}, DefaultTolerance, 2)
	assertT.Equal(Range{Dim: 3}, res)

	res = FindAccurateRange(est, []float64{1.9}, []int{6, 7}, DefaultTolerance, 1)
	assertT.Equal(Range{Dim: 0, Scale: 1.9, Found: true}, res)
}
