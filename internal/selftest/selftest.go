// Package selftest implements the fixed known-answer regression suite
// invoked by the CLI's --validate flag: primitives, residue masks
// (including the prime > 64 upper-word regression), GCD, and the
// verifier's true/false cases (scenarios S1-S4).
package selftest

import (
	"fmt"

	"github.com/beal-engine/search/internal/arith"
	"github.com/beal-engine/search/internal/residue"
	"github.com/beal-engine/search/internal/sieve"
	"github.com/beal-engine/search/internal/verify"
)

// Check is one named pass/fail assertion.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll runs every fixed known-answer check and returns the results in
// a stable order. It performs no search work; it is the --validate
// entry point.
func RunAll() []Check {
	var checks []Check
	checks = append(checks, checkGCD())
	checks = append(checks, checkPowMod())
	checks = append(checks, checkBitmask())
	checks = append(checks, checkResidueMaskS3())
	checks = append(checks, checkResidueMaskS4())
	checks = append(checks, checkResidueMaskUpperWordRegression())
	checks = append(checks, checkSieveScalarBatchAgreement())
	checks = append(checks, checkVerifierS1())
	checks = append(checks, checkVerifierS2())
	return checks
}

// AllPassed reports whether every check in checks passed.
func AllPassed(checks []Check) bool {
	for _, c := range checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

func checkGCD() Check {
	cases := []struct{ a, b, want uint64 }{
		{0, 0, 0}, {0, 7, 7}, {7, 0, 7}, {12, 18, 6}, {17, 5, 1}, {1071, 462, 21},
	}
	for _, c := range cases {
		if got := arith.GCD64(c.a, c.b); got != c.want {
			return Check{"gcd64", false, fmt.Sprintf("gcd64(%d,%d)=%d want %d", c.a, c.b, got, c.want)}
		}
	}
	return Check{Name: "gcd64", Passed: true}
}

func checkPowMod() Check {
	if got := arith.PowMod(70, 3, 71); got != 70 {
		return Check{"powmod", false, fmt.Sprintf("powmod(70,3,71)=%d want 70", got)}
	}
	if got := arith.PowMod(2, 10, 1000); got != 24 {
		return Check{"powmod", false, fmt.Sprintf("powmod(2,10,1000)=%d want 24", got)}
	}
	return Check{Name: "powmod", Passed: true}
}

func checkBitmask() Check {
	var m arith.Bitmask128
	m.SetBit(70)
	m.SetBit(127)
	if !m.GetBit(70) || !m.GetBit(127) {
		return Check{"bitmask128", false, "upper-word bits did not round-trip"}
	}
	if m.GetBit(69) || m.GetBit(126) {
		return Check{"bitmask128", false, "unexpected bit set"}
	}
	return Check{Name: "bitmask128", Passed: true}
}

func checkResidueMaskS3() Check {
	// residue_mask(p=7, z=3) == {0, 1, 6}
	tables, err := residue.Build(3, 3, 3, 1, 1)
	if err != nil {
		return Check{"residue_mask_s3", false, err.Error()}
	}
	return checkMaskEquals(tables, 7, map[uint64]bool{0: true, 1: true, 6: true}, "residue_mask_s3")
}

func checkResidueMaskS4() Check {
	// residue_mask(p=11, z=5) == {0, 1, 10}
	tables, err := residue.Build(5, 5, 5, 1, 1)
	if err != nil {
		return Check{"residue_mask_s4", false, err.Error()}
	}
	return checkMaskEquals(tables, 11, map[uint64]bool{0: true, 1: true, 10: true}, "residue_mask_s4")
}

func checkMaskEquals(tables *residue.Tables, prime uint64, want map[uint64]bool, name string) Check {
	idx := -1
	for i, p := range residue.Primes {
		if p == prime {
			idx = i
		}
	}
	if idx < 0 {
		return Check{name, false, fmt.Sprintf("prime %d not in sieve prime set", prime)}
	}
	for r := uint64(0); r < prime; r++ {
		if tables.ResidueMask[idx].GetBit(uint(r)) != want[r] {
			return Check{name, false, fmt.Sprintf("residue %d: got %v want %v", r, tables.ResidueMask[idx].GetBit(uint(r)), want[r])}
		}
	}
	return Check{Name: name, Passed: true}
}

func checkResidueMaskUpperWordRegression() Check {
	tables, err := residue.Build(3, 3, 3, 1, 1)
	if err != nil {
		return Check{"residue_mask_upper_word", false, err.Error()}
	}
	idx := -1
	for i, p := range residue.Primes {
		if p == 71 {
			idx = i
		}
	}
	if !tables.ResidueMask[idx].GetBit(70) {
		return Check{"residue_mask_upper_word", false, "bit 70 of residue_mask(71,3) must be set"}
	}
	return Check{Name: "residue_mask_upper_word", Passed: true}
}

func checkSieveScalarBatchAgreement() Check {
	tables, err := residue.Build(3, 4, 5, 40, 40)
	if err != nil {
		return Check{"sieve_lane_equivalence", false, err.Error()}
	}
	for a := uint64(0); a <= tables.Amax; a++ {
		for base := uint64(0); base <= tables.Bmax; base += 8 {
			mask := sieve.Survives8(tables, a, base)
			for lane := uint64(0); lane < 8; lane++ {
				b := base + lane
				if b > tables.Bmax {
					continue
				}
				want := sieve.Survives(tables, a, b)
				got := mask&(1<<lane) != 0
				if got != want {
					return Check{"sieve_lane_equivalence", false, fmt.Sprintf("a=%d b=%d scalar=%v batched=%v", a, b, want, got)}
				}
			}
		}
	}
	return Check{Name: "sieve_lane_equivalence", Passed: true}
}

func checkVerifierS1() Check {
	// check_beal_hit_gmp(A=2,B=2,x=6,y=6,z=7,Cmax=1000) -> hit, C=2, gcd=2
	r := verify.Check(2, 2, 6, 6, 7, 1000)
	if !r.Hit || r.C != 2 || r.GCD != 2 {
		return Check{"verifier_s1", false, fmt.Sprintf("got hit=%v C=%d gcd=%d", r.Hit, r.C, r.GCD)}
	}
	return Check{Name: "verifier_s1", Passed: true}
}

func checkVerifierS2() Check {
	// check_beal_hit_gmp(A=2,B=3,x=3,y=3,z=3,Cmax=1000) -> no hit
	r := verify.Check(2, 3, 3, 3, 3, 1000)
	if r.Hit {
		return Check{"verifier_s2", false, fmt.Sprintf("expected no hit, got C=%d", r.C)}
	}
	return Check{Name: "verifier_s2", Passed: true}
}
