// Command bealsearch exhaustively searches for counterexamples to the
// Beal Conjecture over a rectangular (A, B) base range for a fixed
// exponent signature (x, y, z).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/beal-engine/search/internal/residue"
	"github.com/beal-engine/search/internal/search"
	"github.com/beal-engine/search/internal/selftest"
	"github.com/beal-engine/search/internal/telemetry"
)

const (
	exitClear      = 0
	exitCounterexample = 42
	exitUsageError = 1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bealsearch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		x, y, z        uint64
		amax, bmax     uint64
		cmax           uint64
		astart, bstart uint64
		threads        int
		logPath        string
		progress       int
		validate       bool
		help           bool
	)

	fs.Uint64Var(&x, "x", 0, "exponent x (>= 3)")
	fs.Uint64Var(&y, "y", 0, "exponent y (>= 3)")
	fs.Uint64Var(&z, "z", 0, "exponent z (>= 3)")
	fs.Uint64Var(&amax, "Amax", 0, "maximum value of A")
	fs.Uint64Var(&bmax, "Bmax", 0, "maximum value of B")
	fs.Uint64Var(&cmax, "Cmax", 10_000_000, "maximum accepted root C")
	fs.Uint64Var(&astart, "Astart", 1, "minimum value of A")
	fs.Uint64Var(&bstart, "Bstart", 1, "minimum value of B")
	fs.IntVar(&threads, "threads", 0, "worker count (0 = auto)")
	fs.StringVar(&logPath, "log", "", "JSONL log path (default: search_<x>_<y>_<z>_<epoch>.jsonl)")
	fs.IntVar(&progress, "progress", 1, "checkpoint period in seconds")
	fs.BoolVar(&validate, "validate", false, "run self-tests, no search")
	fs.BoolVar(&help, "h", false, "print usage")
	fs.BoolVar(&help, "help", false, "print usage")

	if err := fs.Parse(args); err != nil {
		return exitUsageError
	}
	if help {
		fs.Usage()
		return exitClear
	}

	if validate {
		return runValidate()
	}

	if x < 3 || y < 3 || z < 3 {
		fmt.Fprintln(os.Stderr, "bealsearch: --x, --y, --z must each be >= 3")
		return exitUsageError
	}
	if astart == 0 || bstart == 0 || amax == 0 || bmax == 0 {
		fmt.Fprintln(os.Stderr, "bealsearch: --Amax and --Bmax are required and all bounds must be >= 1")
		return exitUsageError
	}
	if astart > amax || bstart > bmax {
		fmt.Fprintln(os.Stderr, "bealsearch: inverted range (start > max)")
		return exitUsageError
	}

	if logPath == "" {
		logPath = fmt.Sprintf("search_%d_%d_%d_%d.jsonl", x, y, z, time.Now().Unix())
	}

	tables, err := residue.Build(x, y, z, amax, bmax)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bealsearch: %v\n", err)
		return exitUsageError
	}

	sink := telemetry.NewOSSink(logPath)
	runID := fmt.Sprintf("%d-%d-%d-%d", x, y, z, time.Now().UnixNano())

	params := search.Params{
		X: x, Y: y, Z: z,
		Astart: astart, Amax: amax,
		Bstart: bstart, Bmax: bmax,
		Cmax:           cmax,
		Workers:        threads,
		RunID:          runID,
		Sink:           sink,
		ProgressPeriod: time.Duration(progress) * time.Second,
		OnPrimitiveHit: announcePrimitive,
	}

	results, err := search.Run(params, tables)
	if err != nil {
		log.Printf("bealsearch: search aborted: %v", err)
		return exitUsageError
	}

	primitiveHits := results.PrimitiveHits()
	powerHits := results.PowerHits()

	status := "CLEAR"
	if primitiveHits > 0 {
		status = "COUNTEREXAMPLE_FOUND"
	}
	digest := telemetry.IntegrityDigest(
		x, y, z, astart, amax, bstart, bmax, cmax,
		results.TotalPairs.Load(), results.GCDFiltered.Load(), results.ModFiltered.Load(),
		results.ExactChecks.Load(), powerHits, primitiveHits,
	)

	sink.Emit(telemetry.CompleteRecord{
		TS:    time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Event: "COMPLETE",
		RunID: runID,
		Signature: [3]uint64{x, y, z},
		SearchBounds: telemetry.SearchBounds{
			A: [2]uint64{astart, amax},
			B: [2]uint64{bstart, bmax},
			C: cmax,
		},
		Results: telemetry.Results{
			TotalPairs:               results.TotalPairs.Load(),
			GCDFiltered:               results.GCDFiltered.Load(),
			ModFiltered:               results.ModFiltered.Load(),
			ExactChecks:               results.ExactChecks.Load(),
			PowerHits:                 powerHits,
			PrimitiveCounterexamples:  primitiveHits,
		},
		Performance: telemetry.Performance{
			RuntimeSeconds:     results.Runtime().Seconds(),
			AvgRatePairsPerSec: results.RatePairsPerSec(),
			WorkersUsed:        results.Workers,
		},
		Verification: telemetry.Verification{
			Status:        status,
			IntegrityHash: digest,
		},
	})

	printSummary(results, status, digest)

	if primitiveHits > 0 {
		return exitCounterexample
	}
	return exitClear
}

func announcePrimitive(h search.Hit) {
	fmt.Printf("\ncounterexample found: %d^%d + %d^%d = %d^%d (gcd=%d)\n",
		h.A, h.X, h.B, h.Y, h.C, h.Z, h.GCD)
}

func printSummary(results *search.Results, status, digest string) {
	fmt.Printf("\rsearch complete: %d pairs, %d hits, status=%s\n",
		results.TotalPairs.Load(), results.PowerHits(), status)
	fmt.Printf("runtime=%.2fs rate=%.0f pairs/sec integrity=%s\n",
		results.Runtime().Seconds(), results.RatePairsPerSec(), digest)
}

func runValidate() int {
	checks := selftest.RunAll()
	for _, c := range checks {
		if c.Passed {
			fmt.Printf("PASS  %s\n", c.Name)
		} else {
			fmt.Printf("FAIL  %s: %s\n", c.Name, c.Detail)
		}
	}
	if !selftest.AllPassed(checks) {
		return exitUsageError
	}
	return exitClear
}
