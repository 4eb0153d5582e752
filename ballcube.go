// Package ballcube estimates the volume of the intersection of the unit n-ball
// with the origin-centred cube [-1/sqrt(s), 1/sqrt(s)]^n.
//
// In the intermediate range 1 < s < n the volume comes from the truncated
// Fresnel series of I. Weissman / P. J. Forrester (arXiv:1804.07861, (2.6)):
//
//	F_n(s) = 1/6 + s/n + (1/π) Im Σ_{k=1}^{T} f(2πk/n)^n e^{2πiks/n} / k
//	vol = (2/sqrt(s))^n F_n(s)
//
// The terms f(2πk/n)^n depend only on n and the precision and are cached.
package ballcube

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/aknopov/ballcube/bigc"
	"github.com/aknopov/ballcube/fresnel"
	"github.com/aknopov/ballcube/precomp"
	"github.com/ericlagergren/decimal"
)

const (
	// Default precision in bits
	DefaultPrecision = fresnel.DefaultPrecision

	// Lower bound of the default number of series terms
	minDefaultTerms = 10000

	// Extra digits for the series sum
	sumGuardDigits = 10
)

var (
	ErrDimension      = errors.New("dimension should be positive")
	ErrScale          = errors.New("scale should be positive")
	ErrScaleSyntax    = errors.New("scale should be a finite decimal number")
	ErrPrecision      = errors.New("precision can't be negative")
	ErrTerms          = errors.New("number of terms can't be negative")
	ErrNeedsPrecision = errors.New("either more terms or precision required")
)

// Estimator of intersection log-volumes.
// Zero Precision and Terms select the defaults; without Cache terms are kept in memory only.
type Estimator struct {
	Precision int
	Terms     int
	Cache     *precomp.Cache

	lock   sync.Mutex // `tables` guard
	tables map[tableKey]precomp.Table
}

type tableKey struct {
	dim  int
	prec uint
}

// Estimator options
type Option func(*Estimator)

// Precision in bits
func WithPrecision(bits int) Option {
	return func(e *Estimator) { e.Precision = bits }
}

// Number of series terms
func WithTerms(terms int) Option {
	return func(e *Estimator) { e.Terms = terms }
}

// Disk cache of precomputed terms
func WithCache(cache *precomp.Cache) Option {
	return func(e *Estimator) { e.Cache = cache }
}

// Creates an estimator
func New(opts ...Option) *Estimator {
	e := &Estimator{tables: make(map[tableKey]precomp.Table)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Default number of terms for dimension `n`
func DefaultTerms(n int) int {
	return max(10*n, DefaultPrecision, minDefaultTerms)
}

// Effective precision in bits
func (e *Estimator) EffectivePrecision() uint {
	if e.Precision <= 0 {
		return DefaultPrecision
	}
	return uint(e.Precision)
}

// Effective number of terms for dimension `n`
func (e *Estimator) EffectiveTerms(n int) int {
	if e.Terms <= 0 {
		return DefaultTerms(n)
	}
	return e.Terms
}

func (e *Estimator) validate(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrDimension, n)
	}
	if e.Precision < 0 {
		return fmt.Errorf("%w: %d", ErrPrecision, e.Precision)
	}
	if e.Terms < 0 {
		return fmt.Errorf("%w: %d", ErrTerms, e.Terms)
	}
	return nil
}

// LogVolume returns log(vol(B_n(1) ∩ [-1/sqrt(s), 1/sqrt(s)]^n)).
//
// For s <= 1 the cube contains the ball, for s >= n the ball contains the cube;
// otherwise the truncated series is summed.
func (e *Estimator) LogVolume(n int, s *decimal.Big) (*decimal.Big, error) {
	if err := e.validate(n); err != nil {
		return nil, err
	}
	if !finite(s) {
		return nil, fmt.Errorf("%w: %s", ErrScaleSyntax, s)
	}
	if s.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrScale, s)
	}

	prec := e.EffectivePrecision()
	ctx := newContext(fresnel.Digits(prec) + sumGuardDigits)
	bn := decimal.New(int64(n), 0)

	if s.Cmp(decimal.New(1, 0)) <= 0 {
		return logBallVolume(ctx, n, decimal.New(1, 0)), nil
	}
	if s.Cmp(bn) >= 0 {
		return logCubeVolume(ctx, n, s), nil
	}

	terms := e.EffectiveTerms(n)
	table, err := e.table(n, prec, terms)
	if err != nil {
		return nil, err
	}

	pi := ctx.Pi(new(decimal.Big))
	sum := imaginarySum(ctx, pi, n, s, table, terms)

	// F = 1/6 + s/n + sum/π
	fns := ctx.Quo(new(decimal.Big), decimal.New(1, 0), decimal.New(6, 0))
	ctx.Add(fns, fns, ctx.Quo(new(decimal.Big), s, bn))
	ctx.Add(fns, fns, ctx.Quo(sum, sum, pi))
	if fns.Sign() <= 0 {
		return nil, fmt.Errorf("%w (n=%d, s=%s, terms=%d, precision=%d)", ErrNeedsPrecision, n, s, terms, prec)
	}

	// n log(2/sqrt(s)) + log(F)
	res := ctx.Sqrt(new(decimal.Big), s)
	ctx.Quo(res, decimal.New(2, 0), res)
	ctx.Log(res, res)
	ctx.Mul(res, res, bn)
	return ctx.Add(res, res, ctx.Log(fns, fns)), nil
}

// LogVolume with float64 arguments and result
func (e *Estimator) LogVolumeFloat(n int, s float64) (float64, error) {
	res, err := e.LogVolume(n, new(decimal.Big).SetFloat64(s))
	if err != nil {
		return 0, err
	}
	return big2float(res), nil
}

// Makes sure the default number of terms for dimension `n` is available
func (e *Estimator) Precompute(n int) error {
	if err := e.validate(n); err != nil {
		return err
	}
	_, err := e.table(n, e.EffectivePrecision(), e.EffectiveTerms(n))
	return err
}

// Im Σ_{k=1}^{terms} f_k e^{2πiks/n} / k
func imaginarySum(ctx decimal.Context, pi *decimal.Big, n int, s *decimal.Big, table precomp.Table, terms int) *decimal.Big {
	bn := decimal.New(int64(n), 0)
	twoPi := ctx.Mul(new(decimal.Big), pi, decimal.New(2, 0))
	sum := new(decimal.Big)
	frac := new(decimal.Big)
	theta := new(decimal.Big)
	sin := new(decimal.Big)
	cos := new(decimal.Big)
	summand := new(decimal.Big)

	for k := 1; k <= terms; k++ {
		fk := table[k]
		bk := decimal.New(int64(k), 0)

		// ks/n mod 1
		ctx.Mul(frac, bk, s)
		ctx.Quo(frac, frac, bn)
		whole, _ := frac.Int64()
		ctx.Sub(frac, frac, decimal.New(whole, 0))

		if frac.Sign() == 0 {
			summand.Copy(fk.Im)
		} else {
			// Im(f e^{iθ}) = Re(f) sin θ + Im(f) cos θ
			ctx.Mul(theta, twoPi, frac)
			ctx.Sin(sin, theta)
			ctx.Cos(cos, theta)
			ctx.Mul(summand, fk.Re, sin)
			ctx.Add(summand, summand, ctx.Mul(cos, fk.Im, cos))
		}

		ctx.Quo(summand, summand, bk)
		ctx.Add(sum, sum, summand)
	}

	return sum
}

// Terms 1..terms for the dimension, from memory, the disk cache or computed
func (e *Estimator) table(n int, prec uint, terms int) (precomp.Table, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.tables == nil {
		e.tables = make(map[tableKey]precomp.Table)
	}

	key := tableKey{dim: n, prec: prec}
	if t, ok := e.tables[key]; ok && len(t) >= terms {
		return t, nil
	}

	ev := fresnel.NewEvaluator(prec)
	compute := func(k int) bigc.Complex { return ev.Term(n, k) }

	if e.Cache == nil {
		// tables handed out earlier may still be read, so extend a copy
		t := make(precomp.Table, terms)
		maps.Copy(t, e.tables[key])
		for k := 1; k <= terms; k++ {
			if _, ok := t[k]; !ok {
				t[k] = compute(k)
			}
		}
		e.tables[key] = t
		return t, nil
	}

	if err := e.Cache.Precompute(n, prec, terms, compute); err != nil {
		return nil, err
	}
	t, err := e.Cache.Retrieve(n, prec, terms)
	if err != nil {
		return nil, err
	}
	e.tables[key] = t
	return t, nil
}

// Parses decimal scale text; NaN and infinities are rejected
func ParseScale(text string) (*decimal.Big, error) {
	s, ok := new(decimal.Big).SetString(text)
	if !ok || !finite(s) {
		return nil, fmt.Errorf("%w: %q", ErrScaleSyntax, text)
	}
	return s, nil
}

func finite(x *decimal.Big) bool {
	return !x.IsNaN(0) && !x.IsInf(0)
}

func newContext(digits int) decimal.Context {
	ctx := decimal.Context128
	ctx.Precision = digits
	return ctx
}

func big2float(val *decimal.Big) float64 {
	conv, _ := val.Float64()
	return conv
}
