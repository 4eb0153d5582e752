package ballcube

import (
	"fmt"

	"github.com/aknopov/ballcube/fresnel"
	"github.com/ericlagergren/decimal"
)

var (
	// products are folded into the log sum above this value
	foldLimit = decimal.New(1, -100)
)

// Log-volume of the unit n-ball with default precision
func LogBallVolume(n int) (*decimal.Big, error) {
	return LogBallVolumeRadius(n, decimal.New(1, 0), DefaultPrecision)
}

// Log-volume of the n-ball with radius `r`:
// n log(r) + (n/2) log(π) - log(Γ(n/2 + 1))
func LogBallVolumeRadius(n int, r *decimal.Big, prec uint) (*decimal.Big, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrDimension, n)
	}
	if !finite(r) {
		return nil, fmt.Errorf("%w: radius %s", ErrScaleSyntax, r)
	}
	if r.Sign() <= 0 {
		return nil, fmt.Errorf("%w: radius %s", ErrScale, r)
	}
	return logBallVolume(newContext(fresnel.Digits(prec)+sumGuardDigits), n, r), nil
}

// Log-volume of the cube [-1/sqrt(s), 1/sqrt(s)]^n: n (log(2) - log(s)/2)
func LogCubeVolume(n int, s *decimal.Big, prec uint) (*decimal.Big, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrDimension, n)
	}
	if !finite(s) {
		return nil, fmt.Errorf("%w: %s", ErrScaleSyntax, s)
	}
	if s.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrScale, s)
	}
	return logCubeVolume(newContext(fresnel.Digits(prec)+sumGuardDigits), n, s), nil
}

func logBallVolume(ctx decimal.Context, n int, r *decimal.Big) *decimal.Big {
	bn := decimal.New(int64(n), 0)
	pi := ctx.Pi(new(decimal.Big))

	res := ctx.Log(new(decimal.Big), r)
	ctx.Mul(res, res, bn)

	halfLogPi := ctx.Log(new(decimal.Big), pi)
	ctx.Quo(halfLogPi, halfLogPi, decimal.New(2, 0))
	ctx.Add(res, res, ctx.Mul(new(decimal.Big), halfLogPi, bn))

	return ctx.Sub(res, res, logGammaHalfPlusOne(ctx, n, halfLogPi))
}

// log(Γ(n/2 + 1)) exactly for integer n >= 1:
// (n/2)! for even n and sqrt(π) Π_{j=0}^{(n-1)/2} (j + 1/2) for odd n
func logGammaHalfPlusOne(ctx decimal.Context, n int, halfLogPi *decimal.Big) *decimal.Big {
	sum := new(decimal.Big)
	prod := decimal.New(1, 0)
	fold := func() {
		ctx.Add(sum, sum, ctx.Log(new(decimal.Big), prod))
		prod.SetUint64(1)
	}

	if n%2 == 0 {
		for j := 2; j <= n/2; j++ {
			ctx.Mul(prod, prod, decimal.New(int64(j), 0))
			if prod.Cmp(foldLimit) > 0 {
				fold()
			}
		}
	} else {
		half := decimal.New(5, 1)
		factor := new(decimal.Big)
		for j := 0; j <= (n-1)/2; j++ {
			ctx.Add(factor, decimal.New(int64(j), 0), half)
			ctx.Mul(prod, prod, factor)
			if prod.Cmp(foldLimit) > 0 {
				fold()
			}
		}
		ctx.Add(sum, sum, halfLogPi)
	}
	fold()

	return sum
}

func logCubeVolume(ctx decimal.Context, n int, s *decimal.Big) *decimal.Big {
	res := ctx.Log(new(decimal.Big), decimal.New(2, 0))
	halfLogS := ctx.Log(new(decimal.Big), s)
	ctx.Quo(halfLogS, halfLogS, decimal.New(2, 0))
	ctx.Sub(res, res, halfLogS)
	return ctx.Mul(res, res, decimal.New(int64(n), 0))
}
