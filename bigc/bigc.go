// Package bigc provides complex numbers with arbitrary precision decimal parts.
//
// All operations allocate their result and round it to the precision of the
// Context they are invoked on.
package bigc

import (
	"github.com/ericlagergren/decimal"
)

// Complex number with `decimal.Big` real and imaginary parts
type Complex struct {
	Re *decimal.Big
	Im *decimal.Big
}

// Arithmetic context - precision and rounding of the results
type Context struct {
	decimal.Context
}

// Creates context with `digits` significant decimal digits
func NewContext(digits int) Context {
	ctx := decimal.Context128
	ctx.Precision = digits
	return Context{ctx}
}

// Complex number with integer parts
func FromInt(re, im int64) Complex {
	return Complex{decimal.New(re, 0), decimal.New(im, 0)}
}

// Returns `x` rounded to context precision
func (c Context) Round(x Complex) Complex {
	zero := new(decimal.Big)
	return Complex{c.Context.Add(new(decimal.Big), x.Re, zero), c.Context.Add(new(decimal.Big), x.Im, zero)}
}

// x - y
func (c Context) Sub(x, y Complex) Complex {
	return Complex{
		c.Context.Sub(new(decimal.Big), x.Re, y.Re),
		c.Context.Sub(new(decimal.Big), x.Im, y.Im),
	}
}

// x * y
func (c Context) Mul(x, y Complex) Complex {
	ac := c.Context.Mul(new(decimal.Big), x.Re, y.Re)
	bd := c.Context.Mul(new(decimal.Big), x.Im, y.Im)
	ad := c.Context.Mul(new(decimal.Big), x.Re, y.Im)
	bc := c.Context.Mul(new(decimal.Big), x.Im, y.Re)
	return Complex{c.Context.Sub(ac, ac, bd), c.Context.Add(ad, ad, bc)}
}

// x^n by binary exponentiation, n >= 0
func (c Context) Pow(x Complex, n int) Complex {
	if n < 0 {
		panic("bigc: negative exponent")
	}

	res := FromInt(1, 0)
	base := c.Round(x)
	for n > 0 {
		if n&1 == 1 {
			res = c.Mul(res, base)
		}
		n >>= 1
		if n > 0 {
			base = c.Mul(base, base)
		}
	}
	return res
}

// cos(theta) + i*sin(theta)
func (c Context) Expi(theta *decimal.Big) Complex {
	return Complex{
		c.Cos(new(decimal.Big), theta),
		c.Sin(new(decimal.Big), theta),
	}
}

// Lossy conversion to the built-in type
func (x Complex) Complex128() complex128 {
	re, _ := x.Re.Float64()
	im, _ := x.Im.Float64()
	return complex(re, im)
}
