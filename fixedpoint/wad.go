// Package fixedpoint provides the 18-decimal ("wad") fixed-point arithmetic
// substrate used by the bonding curve. All amounts are unsigned integers
// scaled by Wad; overflow and division-by-zero are surfaced as errors rather
// than panics, following the checked-arithmetic style the teacher's native
// packages use for balance accounting.
package fixedpoint

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when an operation would overflow a uint256.
var ErrOverflow = errors.New("fixedpoint: overflow")

// ErrDivByZero is returned by DivWad when the divisor is zero.
var ErrDivByZero = errors.New("fixedpoint: division by zero")

// Wad is the 1e18 scaling factor used throughout the curve math.
var Wad = uint256.NewInt(1e18)

// powLinearThreshold marks the boundary between the linear and quadratic
// power-approximation regimes: x < 0.1 (in wad) uses the linear term only.
var powLinearThreshold = new(uint256.Int).Div(Wad, uint256.NewInt(10))

// MulWad computes (a*b)/1e18 with checked overflow on the intermediate product.
func MulWad(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Div(product, Wad), nil
}

// DivWad computes (a*1e18)/b, reverting with ErrDivByZero when b is zero.
func DivWad(a, b *uint256.Int) (*uint256.Int, error) {
	if b == nil || b.IsZero() {
		return nil, ErrDivByZero
	}
	scaled, overflow := new(uint256.Int).MulOverflow(a, Wad)
	if overflow {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Div(scaled, b), nil
}

// FromCoins converts a whole-coin count into its wad-scaled base-unit amount.
func FromCoins(coins uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(coins), Wad)
}

// PowApprox approximates (1+x)^n for x in [0, 1) expressed in wad, and a
// rational exponent n also expressed in wad. It deliberately trades accuracy
// for a bounded, cheap computation: a linear expansion below the regime
// boundary (x < 0.1) and a quadratic expansion at or above it. The direction
// of the error depends on n: for n > 1 both expansions underestimate; for
// n < 1 (the buy path's n ~= 1/3) the quadratic expansion underestimates but
// the linear one overestimates slightly, so below the boundary a buy can
// mint slightly more tokens than the exact power would give. At n ~= 1/3 the
// relative error stays under 1% for x <= 0.5; at n ~= 3 it reaches a few
// percent.
//
// Returns 1 + the approximated delta, still in wad.
func PowApprox(x, n *uint256.Int) (*uint256.Int, error) {
	if x == nil || x.IsZero() {
		return new(uint256.Int).Set(Wad), nil
	}
	nx, err := MulWad(n, x)
	if err != nil {
		return nil, err
	}
	if x.Cmp(powLinearThreshold) < 0 {
		return addWad(Wad, nx)
	}
	// Quadratic term: n*(n-1)*x^2/2, added to the linear term already computed.
	nMinus1 := new(uint256.Int)
	if n.Cmp(Wad) >= 0 {
		nMinus1.Sub(n, Wad)
	} else {
		// n < 1 in wad terms: (n-1) is negative, so the quadratic correction
		// is subtracted instead of added. Track sign explicitly since
		// uint256 has no native negative values.
		nMinus1.Sub(Wad, n)
		return quadraticNegative(x, n, nx, nMinus1)
	}
	xSquared, err := MulWad(x, x)
	if err != nil {
		return nil, err
	}
	coefficient, err := MulWad(n, nMinus1)
	if err != nil {
		return nil, err
	}
	quad, err := MulWad(coefficient, xSquared)
	if err != nil {
		return nil, err
	}
	quad = new(uint256.Int).Div(quad, uint256.NewInt(2))
	withLinear, err := addWad(Wad, nx)
	if err != nil {
		return nil, err
	}
	return addWad(withLinear, quad)
}

// quadraticNegative handles the n < 1 case where (n-1) is negative: the
// quadratic correction n*(n-1)*x^2/2 is subtracted from 1+n*x instead of
// added. oneMinusN holds (1-n), i.e. the magnitude of (n-1).
func quadraticNegative(x, n, nx, oneMinusN *uint256.Int) (*uint256.Int, error) {
	xSquared, err := MulWad(x, x)
	if err != nil {
		return nil, err
	}
	coefficient, err := MulWad(n, oneMinusN)
	if err != nil {
		return nil, err
	}
	quad, err := MulWad(coefficient, xSquared)
	if err != nil {
		return nil, err
	}
	quad = new(uint256.Int).Div(quad, uint256.NewInt(2))
	withLinear, err := addWad(Wad, nx)
	if err != nil {
		return nil, err
	}
	if withLinear.Cmp(quad) < 0 {
		return uint256.NewInt(0), nil
	}
	return new(uint256.Int).Sub(withLinear, quad), nil
}

// PowApproxComplement approximates (1-u)^n for u in [0, 1) expressed in wad,
// the sell-side mirror of PowApprox: the same Taylor expansion around x=0
// with x substituted by -u, so the quadratic coefficient n(n-1) keeps its
// sign (x^2 is sign-independent) while the linear term flips sign. Used by
// CalcSell, where u = tokens_sold/effective_supply.
func PowApproxComplement(u, n *uint256.Int) (*uint256.Int, error) {
	if u == nil || u.IsZero() {
		return new(uint256.Int).Set(Wad), nil
	}
	nu, err := MulWad(n, u)
	if err != nil {
		return nil, err
	}
	linear := subClamped(Wad, nu)
	if u.Cmp(powLinearThreshold) < 0 {
		return linear, nil
	}
	uSquared, err := MulWad(u, u)
	if err != nil {
		return nil, err
	}
	if n.Cmp(Wad) >= 0 {
		nMinus1 := new(uint256.Int).Sub(n, Wad)
		coefficient, err := MulWad(n, nMinus1)
		if err != nil {
			return nil, err
		}
		quad, err := MulWad(coefficient, uSquared)
		if err != nil {
			return nil, err
		}
		quad = new(uint256.Int).Div(quad, uint256.NewInt(2))
		withQuad, err := addWad(Wad, quad)
		if err != nil {
			return nil, err
		}
		return subClamped(withQuad, nu), nil
	}
	oneMinusN := new(uint256.Int).Sub(Wad, n)
	coefficient, err := MulWad(n, oneMinusN)
	if err != nil {
		return nil, err
	}
	quad, err := MulWad(coefficient, uSquared)
	if err != nil {
		return nil, err
	}
	quad = new(uint256.Int).Div(quad, uint256.NewInt(2))
	return subClamped(linear, quad), nil
}

// subClamped returns a-b, or zero if that would underflow.
func subClamped(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) < 0 {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Sub(a, b)
}

func addWad(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}
