package fresnel

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/ericlagergren/decimal"
	"github.com/stretchr/testify/assert"
)

// checks that two values agree within absolute tolerance
func near(expect, got complex128, tol float64) bool {
	return cmplx.Abs(expect-got) <= tol
}

func diff(t *testing.T, x, y *decimal.Big) float64 {
	t.Helper()
	d := new(decimal.Big)
	decimal.Context128.Sub(d, x, y)
	f, _ := d.Float64()
	return math.Abs(f)
}

func TestDigits(t *testing.T) {
	assertT := assert.New(t)

	assertT.Equal(17, Digits(53))
	assertT.Equal(193, Digits(DefaultPrecision))
	assertT.Equal(193, NewEvaluator(0).Digits())
	assertT.Equal(32, NewEvaluator(100).Digits())
}

func TestIntegralKnownValues(t *testing.T) {
	assertT := assert.New(t)

	ev := NewEvaluator(128)

	// C(1) and S(1) of the non-normalised Fresnel integrals
	assertT.True(near(complex(0.904524237900272, -0.3102683017233811), ev.Integral(decimal.New(1, 0)).Complex128(), 1e-14))
	assertT.Equal(complex(1, 0), ev.Integral(new(decimal.Big)).Complex128())
	assertT.True(near(complex(0.08590337564750235, -0.07900211549833733), ev.Integral(decimal.New(50, 0)).Complex128(), 1e-13))
}

func TestBranchesAgree(t *testing.T) {
	assertT := assert.New(t)

	ev := NewEvaluator(100)
	assertT.Less(ev.asymptoticFrom(), 100.0)

	for _, yv := range []int64{100, 150, 200, 777} {
		y := decimal.New(yv, 0)
		yf := float64(yv)
		ser := ev.series(y, yf)
		asy := ev.asymptotic(y)

		assertT.Less(diff(t, ser.Re, asy.Re), 1e-30, "y=%d", yv)
		assertT.Less(diff(t, ser.Im, asy.Im), 1e-30, "y=%d", yv)
	}
}

func TestTerm(t *testing.T) {
	assertT := assert.New(t)

	ev := NewEvaluator(128)

	assertT.True(near(complex(-0.11501500150803576, -0.3776139031391719), ev.Term(2, 1).Complex128(), 1e-13))
	assertT.True(near(complex(-0.0798308616639331, 0.001945636495109801), ev.Term(3, 2).Complex128(), 1e-13))

	// 2πk/n beyond the series range
	y := ev.argument(2, 100)
	f := ev.Integral(y).Complex128()
	assertT.True(near(cmplx.Pow(f, 2), ev.Term(2, 100).Complex128(), 1e-15))
}

func TestArgument(t *testing.T) {
	assertT := assert.New(t)

	ev := NewEvaluator(128)

	y, _ := ev.argument(4, 3).Float64()
	assertT.InDelta(3*math.Pi/2, y, 1e-15)
	y, _ = ev.argument(7, 700).Float64()
	assertT.InDelta(200*math.Pi, y, 1e-12)
}

func TestReduce(t *testing.T) {
	assertT := assert.New(t)

	ev := NewEvaluator(100)
	work := ev.context(40)

	r := ev.reduce(work, decimal.New(1000, 0))
	rf, _ := r.Float64()
	assertT.InDelta(math.Mod(1000, 2*math.Pi), rf, 1e-12)

	r = ev.reduce(work, decimal.New(3, 0))
	assertT.Equal("3", r.String())
}

func BenchmarkTerm(b *testing.B) {
	ev := NewEvaluator(DefaultPrecision)
	b.ResetTimer()

	for k := range b.N {
		ev.Term(50, k%1000+1)
	}
}
