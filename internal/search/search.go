// Package search implements the parallel work distribution that
// coordinates the GCD skip, sieve filter, and exact verifier across a
// rectangular (A, B) range for a fixed exponent signature.
package search

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/beal-engine/search/internal/arith"
	"github.com/beal-engine/search/internal/residue"
	"github.com/beal-engine/search/internal/sieve"
	"github.com/beal-engine/search/internal/telemetry"
	"github.com/beal-engine/search/internal/verify"
)

// Params is the immutable input to a search run.
type Params struct {
	X, Y, Z        uint64
	Astart, Amax   uint64
	Bstart, Bmax   uint64
	Cmax           uint64
	Workers        int // 0 = auto (runtime.GOMAXPROCS(0))
	RunID          string
	Sink           *telemetry.Sink
	ProgressPeriod time.Duration // 0 = default (1s)

	// OnPrimitiveHit, if set, is invoked synchronously (under the
	// driver's critical section) whenever a primitive counterexample is
	// discovered, for the CLI's visible "counterexample found" notice.
	OnPrimitiveHit func(Hit)
}

// Hit is a surviving and verified tuple.
type Hit struct {
	A, B, C    uint64
	GCD        uint64
	X, Y, Z    uint64
}

// IsPrimitive reports whether the hit's gcd is 1.
func (h Hit) IsPrimitive() bool { return h.GCD == 1 }

// Results accumulates atomically-updated counters and the hit list for
// the lifetime of one search run.
type Results struct {
	TotalPairs  atomic.Uint64
	GCDFiltered atomic.Uint64
	ModFiltered atomic.Uint64
	ExactChecks atomic.Uint64

	hitsMu sync.Mutex
	Hits   []Hit

	StartedAt  time.Time
	FinishedAt time.Time
	Workers    int
}

// PowerHits returns the total number of verified hits.
func (r *Results) PowerHits() uint64 {
	r.hitsMu.Lock()
	defer r.hitsMu.Unlock()
	return uint64(len(r.Hits))
}

// PrimitiveHits returns the number of hits with gcd(A, B, C) == 1.
func (r *Results) PrimitiveHits() uint64 {
	r.hitsMu.Lock()
	defer r.hitsMu.Unlock()
	var n uint64
	for _, h := range r.Hits {
		if h.IsPrimitive() {
			n++
		}
	}
	return n
}

// Runtime returns the wall-clock duration of the run.
func (r *Results) Runtime() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RatePairsPerSec returns the average throughput of the completed run.
func (r *Results) RatePairsPerSec() float64 {
	secs := r.Runtime().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.TotalPairs.Load()) / secs
}

const hitBufferSize = 64

// workerState is the per-worker local accumulator; flushed into the
// shared Results once per completed A (counters) or when the local hit
// buffer fills (hits), bounding cross-worker contention.
type workerState struct {
	tested, gcdSkip, modSkip, exact uint64
	hitBuf                          []Hit
}

func (w *workerState) resetPerA() {
	w.tested, w.gcdSkip, w.modSkip, w.exact = 0, 0, 0, 0
}

// Run partitions the A axis across workers with dynamic unit-chunk
// scheduling, runs the GCD-skip -> sieve -> verifier pipeline per pair,
// and returns the aggregated Results. The tables must already be built
// for params' signature and bounds.
func Run(params Params, tables *residue.Tables) (*Results, error) {
	if params.Astart > params.Amax || params.Bstart > params.Bmax {
		return nil, fmt.Errorf("search: inverted range (Astart=%d Amax=%d Bstart=%d Bmax=%d)",
			params.Astart, params.Amax, params.Bstart, params.Bmax)
	}

	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	progressPeriod := params.ProgressPeriod
	if progressPeriod <= 0 {
		progressPeriod = time.Second
	}

	results := &Results{Workers: workers, StartedAt: time.Now()}

	expectedPairs := (params.Amax - params.Astart + 1) * (params.Bmax - params.Bstart + 1)
	chunksTotal := params.Amax - params.Astart + 1

	params.Sink.Emit(telemetry.StartRecord{
		TS:            nowISO(),
		Event:         "START",
		RunID:         params.RunID,
		Mode:          "search",
		Signature:     [3]uint64{params.X, params.Y, params.Z},
		Astart:        params.Astart,
		Amax:          params.Amax,
		Bstart:        params.Bstart,
		Bmax:          params.Bmax,
		Cmax:          params.Cmax,
		ExpectedPairs: expectedPairs,
		System:        currentSystem(),
		SievePrimes:   residue.Primes[:],
	})

	var nextA atomic.Uint64
	nextA.Store(params.Astart)

	var checkpointMu sync.Mutex
	lastCheckpoint := time.Now()
	var chunksDone atomic.Uint64

	maybeCheckpoint := func() {
		if time.Since(lastCheckpoint) < progressPeriod {
			return
		}
		checkpointMu.Lock()
		defer checkpointMu.Unlock()
		if time.Since(lastCheckpoint) < progressPeriod {
			return // another worker already emitted this tick
		}
		lastCheckpoint = time.Now()

		total := results.TotalPairs.Load()
		var percent float64
		if expectedPairs > 0 {
			percent = 100 * float64(total) / float64(expectedPairs)
		}
		elapsed := time.Since(results.StartedAt).Seconds()
		var rate float64
		if elapsed > 0 {
			rate = float64(total) / elapsed
		}
		params.Sink.Emit(telemetry.CheckpointRecord{
			TS:              nowISO(),
			Event:           "CHECKPOINT",
			RunID:           params.RunID,
			PairsCompleted:  total,
			PairsExpected:   expectedPairs,
			PercentComplete: percent,
			GCDSkips:        results.GCDFiltered.Load(),
			ModSkips:        results.ModFiltered.Load(),
			ExactChecks:     results.ExactChecks.Load(),
			ElapsedSeconds:  elapsed,
			RatePairsPerSec: rate,
			ChunksDone:      chunksDone.Load(),
			ChunksTotal:     chunksTotal,
		})
	}

	var hitMu sync.Mutex
	flushHits := func(local []Hit) []Hit {
		if len(local) == 0 {
			return local
		}
		hitMu.Lock()
		results.hitsMu.Lock()
		results.Hits = append(results.Hits, local...)
		results.hitsMu.Unlock()
		hitMu.Unlock()
		return local[:0]
	}

	announcePrimitive := func(h Hit) {
		hitMu.Lock()
		defer hitMu.Unlock()
		if params.OnPrimitiveHit != nil {
			params.OnPrimitiveHit(h)
		}
		params.Sink.Emit(telemetry.PowerHitRecord{
			TS: nowISO(), Event: "POWER_HIT",
			A: h.A, B: h.B, C: h.C, GCD: h.GCD, X: h.X, Y: h.Y, Z: h.Z,
		})
	}

	g := new(errgroup.Group)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			ws := &workerState{hitBuf: make([]Hit, 0, hitBufferSize)}
			for {
				a := nextA.Add(1) - 1
				if a > params.Amax {
					break
				}
				ws.resetPerA()
				runOneA(params, tables, a, ws, &ws.hitBuf, announcePrimitive)

				if len(ws.hitBuf) >= hitBufferSize {
					ws.hitBuf = flushHits(ws.hitBuf)
				}

				results.TotalPairs.Add(ws.tested)
				results.GCDFiltered.Add(ws.gcdSkip)
				results.ModFiltered.Add(ws.modSkip)
				results.ExactChecks.Add(ws.exact)
				chunksDone.Add(1)

				maybeCheckpoint()
			}
			flushHits(ws.hitBuf)
			return nil
		})
	}
	_ = g.Wait()

	results.FinishedAt = time.Now()
	return results, nil
}

// runOneA runs the B sweep for a single A value, accumulating into the
// worker-local state and hit buffer.
func runOneA(params Params, tables *residue.Tables, a uint64, ws *workerState, hitBuf *[]Hit, announcePrimitive func(Hit)) {
	for bBase := params.Bstart; bBase <= params.Bmax; bBase += 8 {
		mask := sieve.Survives8(tables, a, bBase)
		limit := bBase + 8
		if limit > params.Bmax+1 {
			limit = params.Bmax + 1
		}
		for b := bBase; b < limit; b++ {
			ws.tested++
			lane := uint(b - bBase)

			if arith.GCD64(a, b) > 1 {
				ws.gcdSkip++
				continue
			}
			if mask&(uint8(1)<<lane) == 0 {
				ws.modSkip++
				continue
			}
			ws.exact++

			r := verify.Check(a, b, params.X, params.Y, params.Z, params.Cmax)
			if !r.Hit {
				continue
			}
			h := Hit{A: a, B: b, C: r.C, GCD: r.GCD, X: params.X, Y: params.Y, Z: params.Z}
			*hitBuf = append(*hitBuf, h)
			if h.IsPrimitive() {
				announcePrimitive(h)
			}
		}
	}
}
