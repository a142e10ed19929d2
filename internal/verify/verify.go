// Package verify performs the exact, arbitrary-precision check that
// resolves sieve survivors: does A^x + B^y equal a perfect z-th power
// C^z with C within bounds. No floating point anywhere.
package verify

import (
	"math/big"

	"github.com/beal-engine/search/internal/arith"
)

// Result is the outcome of checking one surviving (A, B) pair.
type Result struct {
	Hit bool
	C   uint64
	GCD uint64
}

// Check computes S = A^x + B^y in arbitrary precision and tests whether
// S is an exact z-th power with root C in [1, Cmax]. If so it returns
// Hit=true, the root C, and gcd(A, gcd(B, C)).
func Check(a, b, x, y, z, cmax uint64) Result {
	sa := new(big.Int).Exp(new(big.Int).SetUint64(a), new(big.Int).SetUint64(x), nil)
	sb := new(big.Int).Exp(new(big.Int).SetUint64(b), new(big.Int).SetUint64(y), nil)
	sum := new(big.Int).Add(sa, sb)

	root, exact := integerRoot(sum, z)
	if !exact {
		return Result{}
	}
	if !root.IsUint64() {
		return Result{}
	}
	c := root.Uint64()
	if c < 1 || c > cmax {
		return Result{}
	}

	g := arith.GCD64(a, arith.GCD64(b, c))
	return Result{Hit: true, C: c, GCD: g}
}

// integerRoot returns floor(n^(1/z)) and whether that root is exact
// (root^z == n), via binary search over big.Int.Exp/Cmp. No floating
// point, no iterative method whose convergence needs proving.
func integerRoot(n *big.Int, z uint64) (*big.Int, bool) {
	if n.Sign() == 0 {
		return big.NewInt(0), true
	}

	zExp := new(big.Int).SetUint64(z)
	one := big.NewInt(1)

	// Any root is below 2^(floor(bitlen(n)/z)+1).
	hiShift := uint(n.BitLen())/uint(z) + 1
	lo := big.NewInt(0)
	hi := new(big.Int).Lsh(one, hiShift)

	for new(big.Int).Sub(hi, lo).Cmp(one) > 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		pow := new(big.Int).Exp(mid, zExp, nil)
		switch pow.Cmp(n) {
		case 0:
			return mid, true
		case -1:
			lo = mid
		default:
			hi = mid
		}
	}

	pow := new(big.Int).Exp(lo, zExp, nil)
	return lo, pow.Cmp(n) == 0
}
