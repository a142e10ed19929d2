// Package residue builds the precomputed modular lookup tables the sieve
// filter reads on its hot path: the z-th-power residue sets modulo each
// sieve prime, the A-indexed table of A^x mod p, and the prime-indexed
// table of B^y mod p.
package residue

import (
	"fmt"

	"github.com/beal-engine/search/internal/arith"
)

// Primes is the fixed, ordered set of 20 sieve primes. Order and identity
// are part of the contract: changing either invalidates integrity digests
// and cross-run comparability.
var Primes = [20]uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71}

const NumPrimes = len(Primes)

// Tables holds the three precomputed lookup structures for a fixed
// signature (x, y, z) and bounds (Amax, Bmax). Immutable after
// construction; safe to share read-only across goroutines.
type Tables struct {
	X, Y, Z uint64
	Amax    uint64
	Bmax    uint64

	// ResidueMask[i] is the z-th power residue set modulo Primes[i].
	ResidueMask [NumPrimes]arith.Bitmask128

	// AxMod[A][i] = A^x mod Primes[i]. A-major: one contiguous row of 20
	// bytes per A, so the sieve's per-A-fixed prime sweep broadcasts a
	// scalar.
	AxMod [][NumPrimes]uint8

	// ByMod[i][B] = B^y mod Primes[i]. Prime-major: one contiguous row
	// of (Bmax+1) bytes per prime, so an 8-wide B sweep at fixed (A, i)
	// reads eight consecutive bytes.
	ByMod [NumPrimes][]uint8
}

// Build constructs the table triple for exponents x, y, z and bounds
// Amax, Bmax. Only allocation failure is recoverable; Build never leaves
// a half-initialized *Tables observable — on error it returns (nil, err)
// and releases anything it allocated.
func Build(x, y, z, amax, bmax uint64) (tables *Tables, err error) {
	if x < 3 || y < 3 || z < 3 {
		return nil, fmt.Errorf("residue: exponents must be >= 3, got x=%d y=%d z=%d", x, y, z)
	}

	defer func() {
		if r := recover(); r != nil {
			tables = nil
			err = fmt.Errorf("residue: table allocation failed: %v", r)
		}
	}()

	t := &Tables{X: x, Y: y, Z: z, Amax: amax, Bmax: bmax}

	for i, p := range Primes {
		for s := uint64(0); s < p; s++ {
			r := arith.PowMod(s, z, p)
			t.ResidueMask[i].SetBit(uint(r))
		}
	}

	t.AxMod = make([][NumPrimes]uint8, amax+1)
	for a := uint64(0); a <= amax; a++ {
		for i, p := range Primes {
			t.AxMod[a][i] = uint8(arith.PowMod(a, x, p))
		}
	}

	for i, p := range Primes {
		row := make([]uint8, bmax+1)
		for b := uint64(0); b <= bmax; b++ {
			row[b] = uint8(arith.PowMod(b, y, p))
		}
		t.ByMod[i] = row
	}

	return t, nil
}
