// Package fixedpoint implements the 256-bit intermediate multiply/divide
// helpers used throughout the engine for USD/native conversions. Amounts
// themselves are modelled as unsigned 128-bit integers (spec §3); uint256.Int
// gives every multiply headroom to 256 bits before the final division, so an
// amount near the top of the 128-bit range never truncates a product.
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrDivideByZero is returned by any helper whose denominator is zero.
var ErrDivideByZero = errors.New("fixedpoint: divide by zero")

// BPSDivisor is the basis-point denominator (1 bps = 1/10000).
var BPSDivisor = uint256.NewInt(10_000)

// U64 is a convenience constructor for small literal constants in call sites
// and tests; production amounts flow through uint256.Int end to end.
func U64(v uint64) *uint256.Int { return uint256.NewInt(v) }

// Zero returns a fresh zero-valued amount.
func Zero() *uint256.Int { return new(uint256.Int) }

// Clone returns a defensive copy, treating nil as zero.
func Clone(a *uint256.Int) *uint256.Int {
	if a == nil {
		return Zero()
	}
	return new(uint256.Int).Set(a)
}

// Ratio computes floor(a*n/d), the canonical helper named in spec §3: every
// multiply-then-divide in the pricing path goes through this function.
func Ratio(a, n, d *uint256.Int) (*uint256.Int, error) {
	if d == nil || d.IsZero() {
		return nil, ErrDivideByZero
	}
	if a == nil {
		a = Zero()
	}
	if n == nil {
		n = Zero()
	}
	prod, overflow := new(uint256.Int).MulOverflow(a, n)
	if overflow {
		return nil, errors.New("fixedpoint: ratio numerator overflows 256 bits")
	}
	return new(uint256.Int).Div(prod, d), nil
}

// AddBPS returns floor(x*(10000+b)/10000). A negative b is accepted and
// behaves like SubBPS(x, -b).
func AddBPS(x *uint256.Int, b int64) (*uint256.Int, error) {
	return shiftBPS(x, b)
}

// SubBPS returns floor(x*(10000-b)/10000), clamped so the multiplier never
// goes negative.
func SubBPS(x *uint256.Int, b int64) (*uint256.Int, error) {
	return shiftBPS(x, -b)
}

func shiftBPS(x *uint256.Int, b int64) (*uint256.Int, error) {
	numerator := int64(10_000) + b
	if numerator < 0 {
		numerator = 0
	}
	return Ratio(x, uint256.NewInt(uint64(numerator)), BPSDivisor)
}

// ConvertAssets is the canonical amount<->amount conversion used by swaps and
// LP share math:
//
//	convert_assets(amountIn, num1, num2, denom1, denom2) = Ratio(amountIn, num1*num2, denom1*denom2)
//
// num1*num2 and denom1*denom2 are each formed before the final division so a
// four-factor conversion (e.g. price * decimals adjustment) never truncates
// an intermediate product.
func ConvertAssets(amountIn, num1, num2, denom1, denom2 *uint256.Int) (*uint256.Int, error) {
	if denom1 == nil || denom2 == nil {
		return nil, ErrDivideByZero
	}
	num, overflow := new(uint256.Int).MulOverflow(nz(num1), nz(num2))
	if overflow {
		return nil, errors.New("fixedpoint: convert_assets numerator overflows 256 bits")
	}
	den, overflow := new(uint256.Int).MulOverflow(denom1, denom2)
	if overflow {
		return nil, errors.New("fixedpoint: convert_assets denominator overflows 256 bits")
	}
	return Ratio(amountIn, num, den)
}

func nz(a *uint256.Int) *uint256.Int {
	if a == nil {
		return Zero()
	}
	return a
}

// SaturatingSub returns a-b, clamped to zero instead of underflowing.
func SaturatingSub(a, b *uint256.Int) *uint256.Int {
	a, b = nz(a), nz(b)
	if b.Cmp(a) >= 0 {
		return Zero()
	}
	return new(uint256.Int).Sub(a, b)
}

// Min returns the smaller of a and b.
func Min(a, b *uint256.Int) *uint256.Int {
	a, b = nz(a), nz(b)
	if a.Cmp(b) < 0 {
		return Clone(a)
	}
	return Clone(b)
}

// Max returns the larger of a and b.
func Max(a, b *uint256.Int) *uint256.Int {
	a, b = nz(a), nz(b)
	if a.Cmp(b) > 0 {
		return Clone(a)
	}
	return Clone(b)
}

// AbsDiff returns |a-b| without underflowing.
func AbsDiff(a, b *uint256.Int) *uint256.Int {
	a, b = nz(a), nz(b)
	if a.Cmp(b) > 0 {
		return new(uint256.Int).Sub(a, b)
	}
	return new(uint256.Int).Sub(b, a)
}

// Add returns a+b, treating nil operands as zero.
func Add(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(nz(a), nz(b))
}

// IsZero reports whether a is nil or the zero value.
func IsZero(a *uint256.Int) bool {
	return a == nil || a.IsZero()
}
