package sieve

import (
	"testing"

	"github.com/beal-engine/search/internal/residue"
)

func TestScalarAndBatchedAgree(t *testing.T) {
	tables, err := residue.Build(3, 4, 5, 64, 64)
	if err != nil {
		t.Fatal(err)
	}

	for a := uint64(0); a <= tables.Amax; a++ {
		for base := uint64(0); base <= tables.Bmax; base += 8 {
			mask := Survives8(tables, a, base)
			for lane := 0; lane < 8; lane++ {
				b := base + uint64(lane)
				if b > tables.Bmax {
					if mask&(1<<uint(lane)) != 0 {
						t.Fatalf("a=%d b=%d beyond Bmax but lane set", a, b)
					}
					continue
				}
				want := Survives(tables, a, b)
				got := mask&(1<<uint(lane)) != 0
				if got != want {
					t.Fatalf("a=%d b=%d: scalar=%v batched=%v", a, b, want, got)
				}
			}
		}
	}
}

func TestScalarAndBatchedAgree_UnalignedBlocks(t *testing.T) {
	tables, err := residue.Build(3, 4, 5, 17, 37)
	if err != nil {
		t.Fatal(err)
	}
	// Exercise every possible block alignment, not just multiples of 8.
	for base := uint64(0); base+7 <= tables.Bmax; base++ {
		mask := Survives8(tables, 5, base)
		for lane := 0; lane < 8; lane++ {
			b := base + uint64(lane)
			want := Survives(tables, 5, b)
			got := mask&(1<<uint(lane)) != 0
			if got != want {
				t.Fatalf("base=%d lane=%d: scalar=%v batched=%v", base, lane, want, got)
			}
		}
	}
}

func TestKnownSolutionSurvives(t *testing.T) {
	// 2^6 + 2^6 = 128 = 2^7, so (2,2) must survive the sieve for (6,6,7).
	tables, err := residue.Build(6, 6, 7, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !Survives(tables, 2, 2) {
		t.Fatal("(2,2) must survive the sieve for signature (6,6,7)")
	}
}
