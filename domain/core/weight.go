package core

import (
	"math/big"
)

// Weight helpers. Weights are exact non-negative big integers throughout;
// denominators above 10^30 are routine, so nothing here goes through int64.

// One returns a fresh weight of 1.
func One() *big.Int { return big.NewInt(1) }

// Zero returns a fresh weight of 0.
func Zero() *big.Int { return new(big.Int) }

// Binomial returns C(n, k) as a weight. Out-of-range k yields 0.
func Binomial(n, k int) *big.Int {
	if k < 0 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}

// Pow returns w^n for non-negative n.
func Pow(w *big.Int, n int) *big.Int {
	return new(big.Int).Exp(w, big.NewInt(int64(n)), nil)
}

// Lcm returns the least common multiple of a and b.
func Lcm(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	gcd := new(big.Int).GCD(nil, nil, a, b)
	out := new(big.Int).Div(a, gcd)
	return out.Mul(out, b)
}

// CheckWeight rejects negative weights. Weights can legitimately be zero
// (dropped on distribution construction) but never negative.
func CheckWeight(w *big.Int) error {
	if w.Sign() < 0 {
		return ErrNegativeWeight
	}
	return nil
}
