package residue

import (
	"testing"

	"github.com/beal-engine/search/internal/arith"
)

func maskSet(t *testing.T, tables *Tables, primeIdx int) map[uint64]bool {
	t.Helper()
	p := Primes[primeIdx]
	out := map[uint64]bool{}
	for r := uint64(0); r < p; r++ {
		if tables.ResidueMask[primeIdx].GetBit(uint(r)) {
			out[r] = true
		}
	}
	return out
}

func TestResidueMask_S3(t *testing.T) {
	// S3: residue_mask(p=7, z=3) == {0, 1, 6}
	tables, err := Build(3, 3, 3, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	idx := -1
	for i, p := range Primes {
		if p == 7 {
			idx = i
		}
	}
	got := maskSet(t, tables, idx)
	want := map[uint64]bool{0: true, 1: true, 6: true}
	if len(got) != len(want) {
		t.Fatalf("residue_mask(7,3) = %v, want %v", got, want)
	}
	for r := range want {
		if !got[r] {
			t.Errorf("residue_mask(7,3) missing %d", r)
		}
	}
}

func TestResidueMask_S4(t *testing.T) {
	// S4: residue_mask(p=11, z=5) == {0, 1, 10}
	tables, err := Build(5, 5, 5, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	idx := -1
	for i, p := range Primes {
		if p == 11 {
			idx = i
		}
	}
	got := maskSet(t, tables, idx)
	want := map[uint64]bool{0: true, 1: true, 10: true}
	if len(got) != len(want) {
		t.Fatalf("residue_mask(11,5) = %v, want %v", got, want)
	}
	for r := range want {
		if !got[r] {
			t.Errorf("residue_mask(11,5) missing %d", r)
		}
	}
}

func TestResidueMask_UpperWordRegression(t *testing.T) {
	// For p = 71, z = 3: bit 70 must be set (70^3 mod 71 == 70).
	tables, err := Build(3, 3, 3, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	idx := -1
	for i, p := range Primes {
		if p == 71 {
			idx = i
		}
	}
	if !tables.ResidueMask[idx].GetBit(70) {
		t.Fatal("residue_mask(71, 3) must have bit 70 set (70^3 mod 71 = 70)")
	}
	if got := arith.PowMod(70, 3, 71); got != 70 {
		t.Fatalf("sanity check failed: 70^3 mod 71 = %d, want 70", got)
	}
}

func TestResidueMask_InvariantsHoldForEveryPrime(t *testing.T) {
	for z := uint64(3); z <= 7; z++ {
		tables, err := Build(z, z, z, 1, 1)
		if err != nil {
			t.Fatal(err)
		}
		for i, p := range Primes {
			mask := tables.ResidueMask[i]
			if !mask.GetBit(0) {
				t.Errorf("z=%d p=%d: mask must contain 0", z, p)
			}
			if !mask.GetBit(1) {
				t.Errorf("z=%d p=%d: mask must contain 1", z, p)
			}
			want := map[uint64]bool{}
			for s := uint64(0); s < p; s++ {
				want[arith.PowMod(s, z, p)] = true
			}
			for r := uint64(0); r < p; r++ {
				if mask.GetBit(uint(r)) != want[r] {
					t.Errorf("z=%d p=%d r=%d: mask bit %v, want %v", z, p, r, mask.GetBit(uint(r)), want[r])
				}
			}
		}
	}
}

func TestAxModByMod_ExactValues(t *testing.T) {
	tables, err := Build(3, 4, 5, 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	for a := uint64(0); a <= 20; a++ {
		for i, p := range Primes {
			want := uint8(arith.PowMod(a, 3, p))
			if got := tables.AxMod[a][i]; got != want {
				t.Errorf("AxMod[%d][%d] = %d, want %d", a, i, got, want)
			}
		}
	}
	for i, p := range Primes {
		for b := uint64(0); b <= 20; b++ {
			want := uint8(arith.PowMod(b, 4, p))
			if got := tables.ByMod[i][b]; got != want {
				t.Errorf("ByMod[%d][%d] = %d, want %d", i, b, got, want)
			}
		}
	}
}

func TestBuild_RejectsLowExponents(t *testing.T) {
	if _, err := Build(2, 3, 3, 10, 10); err == nil {
		t.Fatal("expected error for x < 3")
	}
}
