// Package fresnel evaluates the per-term factors of the Fresnel series for the
// ball/cube intersection volume.
//
// For x² = y the kernel is
//
//	f(y) = (C(x) - i S(x)) / x = (1/x) ∫₀ˣ exp(-i t²) dt
//
// with the un-normalised Fresnel integrals C(x) = ∫₀ˣ cos(t²) dt and
// S(x) = ∫₀ˣ sin(t²) dt. The k-th term of the series in dimension n is
// f(2πk/n)^n.
package fresnel

import (
	"math"

	"github.com/aknopov/ballcube/bigc"
	"github.com/ericlagergren/decimal"
)

const (
	// Default precision in bits - same as 12 doubles
	DefaultPrecision = 12 * 53

	// Extra digits carried through every evaluation
	guardDigits = 10
)

// Evaluator computes kernel values with a fixed target precision.
// It memoizes pi, so it is not safe for concurrent use.
type Evaluator struct {
	digits int
	pis    map[int]*decimal.Big
}

// Number of decimal digits that hold `bits` binary digits
func Digits(bits uint) int {
	return int(math.Ceil(float64(bits)*math.Log10(2))) + 1
}

// Creates an evaluator with target precision in bits
func NewEvaluator(bits uint) *Evaluator {
	if bits == 0 {
		bits = DefaultPrecision
	}
	return &Evaluator{digits: Digits(bits), pis: make(map[int]*decimal.Big)}
}

// Target precision in decimal digits
func (e *Evaluator) Digits() int {
	return e.digits
}

// Term returns f(2πk/n)^n for dimension n >= 1 and term index k >= 1.
func (e *Evaluator) Term(n, k int) bigc.Complex {
	work := e.context(e.digits + guardDigits)
	f := e.Integral(e.argument(n, k))
	return work.Pow(f, n)
}

// Integral returns f(y) for y >= 0.
func (e *Evaluator) Integral(y *decimal.Big) bigc.Complex {
	yf, _ := y.Float64()
	if yf > e.asymptoticFrom() {
		return e.asymptotic(y)
	}
	return e.series(y, yf)
}

// y = 2πk/n
func (e *Evaluator) argument(n, k int) *decimal.Big {
	work := e.context(e.digits + guardDigits)
	y := work.Context.Mul(new(decimal.Big), e.pi(work.Precision), decimal.New(int64(2*k), 0))
	return work.Quo(y, y, decimal.New(int64(n), 0))
}

// Smallest y where the asymptotic tail reaches the working epsilon
func (e *Evaluator) asymptoticFrom() float64 {
	return float64(e.digits+guardDigits) * math.Ln10
}

// Power series
//
//	f(y) = Σ (-i y)^m / (m! (2m+1))
//
// Partial sums grow up to e^y before cancelling, hence y/ln(10) extra digits.
func (e *Evaluator) series(y *decimal.Big, yf float64) bigc.Complex {
	work := e.context(e.digits + guardDigits + int(math.Ceil(yf/math.Ln10)))
	eps := decimal.New(1, e.digits+guardDigits)

	re := new(decimal.Big)
	im := new(decimal.Big)
	power := decimal.New(1, 0) // y^m / m!
	term := new(decimal.Big)
	for m := 0; ; m++ {
		work.Quo(term, power, decimal.New(int64(2*m+1), 0))
		switch m % 4 {
		case 0:
			work.Context.Add(re, re, term)
		case 1:
			work.Context.Sub(im, im, term)
		case 2:
			work.Context.Sub(re, re, term)
		case 3:
			work.Context.Add(im, im, term)
		}

		if float64(m) > yf && term.Cmp(eps) < 0 {
			break
		}

		work.Context.Mul(power, power, y)
		work.Quo(power, power, decimal.New(int64(m+1), 0))
	}

	return e.context(e.digits + guardDigits).Round(bigc.Complex{Re: re, Im: im})
}

// Asymptotic expansion
//
//	f(y) = sqrt(π/8) (1 - i) / sqrt(y) - e^{-iy} Σ (-1)^m (2m-1)!! / ((2i)^{m+1} y^{m+1})
//
// The sum is cut at the first term below epsilon or when the terms start to grow.
func (e *Evaluator) asymptotic(y *decimal.Big) bigc.Complex {
	work := e.context(e.digits + guardDigits)
	eps := decimal.New(1, work.Precision)

	twoY := work.Context.Mul(new(decimal.Big), y, decimal.New(2, 0))
	b := work.Quo(new(decimal.Big), decimal.New(1, 0), twoY) // (2m-1)!! / (2y)^{m+1}
	next := new(decimal.Big)
	re := new(decimal.Big)
	im := new(decimal.Big)
	for m := 0; ; m++ {
		// (-1)^m / i^{m+1} cycles through -i, 1, i, -1
		switch m % 4 {
		case 0:
			work.Context.Sub(im, im, b)
		case 1:
			work.Context.Add(re, re, b)
		case 2:
			work.Context.Add(im, im, b)
		case 3:
			work.Context.Sub(re, re, b)
		}

		work.Context.Mul(next, b, decimal.New(int64(2*m+1), 0))
		work.Quo(next, next, twoY)
		if next.Cmp(eps) < 0 || next.Cmp(b) >= 0 {
			break
		}
		b, next = next, b
	}

	phase := work.Context.Sub(new(decimal.Big), new(decimal.Big), e.reduce(work, y))
	tail := work.Mul(work.Expi(phase), bigc.Complex{Re: re, Im: im})

	lead := work.Context.Mul(new(decimal.Big), y, decimal.New(8, 0))
	work.Quo(lead, e.pi(work.Precision), lead)
	work.Sqrt(lead, lead)
	negLead := work.Context.Sub(new(decimal.Big), new(decimal.Big), lead)

	return work.Sub(bigc.Complex{Re: lead, Im: negLead}, tail)
}

// y mod 2π
func (e *Evaluator) reduce(work bigc.Context, y *decimal.Big) *decimal.Big {
	twoPi := work.Context.Mul(new(decimal.Big), e.pi(work.Precision), decimal.New(2, 0))
	q := work.Quo(new(decimal.Big), y, twoPi)
	whole, _ := q.Int64()
	if whole == 0 {
		return new(decimal.Big).Copy(y)
	}
	shift := work.Context.Mul(new(decimal.Big), twoPi, decimal.New(whole, 0))
	return work.Context.Sub(shift, y, shift)
}

func (e *Evaluator) pi(digits int) *decimal.Big {
	if pi, ok := e.pis[digits]; ok {
		return pi
	}
	pi := e.context(digits).Pi(new(decimal.Big))
	e.pis[digits] = pi
	return pi
}

func (e *Evaluator) context(digits int) bigc.Context {
	return bigc.NewContext(digits)
}
