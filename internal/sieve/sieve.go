// Package sieve implements the two decision paths of the modular filter:
// a scalar path that short-circuits on the first killing prime, and an
// 8-lane batched path that evaluates a block of consecutive B values at
// once. Both paths must agree bit-for-bit for identical inputs.
package sieve

import "github.com/beal-engine/search/internal/residue"

// Survives reports whether (A, B) survives the sieve for every prime in
// tables: it survives iff (ax_mod[A][i] + by_mod[i][B]) mod p_i lies in
// residue_mask[i] for every i. Short-circuits on the first killing prime.
func Survives(tables *residue.Tables, a, b uint64) bool {
	ax := &tables.AxMod[a]
	for i, p := range residue.Primes {
		byv := uint64(tables.ByMod[i][b])
		s := uint64(ax[i]) + byv
		if s >= p {
			s -= p
		}
		if !tables.ResidueMask[i].GetBit(uint(s)) {
			return false
		}
	}
	return true
}

// Survives8 evaluates a block of 8 consecutive B values starting at
// bBase, for a fixed A. Bit i of the returned mask is set iff
// bBase+i survives. Lanes with bBase+i > tables.Bmax are cleared. It is
// a pure performance surrogate for 8 calls to Survives: the two must be
// bit-identical for every alignment of bBase, which is the acceptance
// test for the batched path.
func Survives8(tables *residue.Tables, a, bBase uint64) uint8 {
	var active uint8
	for lane := 0; lane < 8; lane++ {
		if bBase+uint64(lane) <= tables.Bmax {
			active |= uint8(1) << uint(lane)
		}
	}
	if active == 0 {
		return 0
	}

	ax := &tables.AxMod[a]
	survivorMask := active

	for i, p := range residue.Primes {
		if survivorMask == 0 {
			break
		}
		axv := uint64(ax[i])
		row := tables.ByMod[i]
		mask := tables.ResidueMask[i]

		for lane := 0; lane < 8; lane++ {
			bit := uint8(1) << uint(lane)
			if survivorMask&bit == 0 {
				continue
			}
			b := bBase + uint64(lane)
			s := axv + uint64(row[b])
			if s >= p {
				s -= p
			}
			if !mask.GetBit(uint(s)) {
				survivorMask &^= bit
			}
		}
	}

	return survivorMask
}
