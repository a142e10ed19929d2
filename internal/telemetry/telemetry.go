// Package telemetry emits the search engine's JSONL lifecycle records:
// START, CHECKPOINT, POWER_HIT, COMPLETE. Each record is appended as one
// line to the configured sink. The sink is built on an afero.Fs so tests
// can exercise it against an in-memory
// filesystem instead of touching disk; it opens, appends, and closes the
// file on each record.
//
// Log I/O errors are never surfaced to the caller: a record that fails
// to write is silently dropped, because logging must never block or
// abort the search.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// System describes the host the search is running on, embedded in the
// START record.
type System struct {
	Hostname string `json:"hostname"`
	Platform string `json:"platform"`
	CPUCount int    `json:"cpu_count"`
	Engine   string `json:"engine"`
}

// StartRecord is emitted exactly once, before any other record.
type StartRecord struct {
	TS            string   `json:"ts"`
	Event         string   `json:"event"`
	RunID         string   `json:"run_id"`
	Mode          string   `json:"mode"`
	Signature     [3]uint64 `json:"signature"`
	Astart        uint64   `json:"Astart"`
	Amax          uint64   `json:"Amax"`
	Bstart        uint64   `json:"Bstart"`
	Bmax          uint64   `json:"Bmax"`
	Cmax          uint64   `json:"Cmax"`
	ExpectedPairs uint64   `json:"expected_pairs"`
	System        System   `json:"system"`
	SievePrimes   []uint64 `json:"sieve_primes"`
}

// CheckpointRecord is emitted at most once per ~1 second of wall clock.
type CheckpointRecord struct {
	TS               string  `json:"ts"`
	Event            string  `json:"event"`
	RunID            string  `json:"run_id"`
	PairsCompleted   uint64  `json:"pairs_completed"`
	PairsExpected    uint64  `json:"pairs_expected"`
	PercentComplete  float64 `json:"percent_complete"`
	GCDSkips         uint64  `json:"gcd_skips"`
	ModSkips         uint64  `json:"mod_skips"`
	ExactChecks      uint64  `json:"exact_checks"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
	RatePairsPerSec  float64 `json:"rate_pairs_per_sec"`
	ChunksDone       uint64  `json:"chunks_done"`
	ChunksTotal      uint64  `json:"chunks_total"`
}

// PowerHitRecord is emitted for every verified hit, primitive or not.
type PowerHitRecord struct {
	TS    string `json:"ts"`
	Event string `json:"event"`
	A     uint64 `json:"A"`
	B     uint64 `json:"B"`
	C     uint64 `json:"C"`
	GCD   uint64 `json:"gcd"`
	X     uint64 `json:"x"`
	Y     uint64 `json:"y"`
	Z     uint64 `json:"z"`
}

// SearchBounds mirrors the A/B/C range fields in the COMPLETE record.
type SearchBounds struct {
	A [2]uint64 `json:"A"`
	B [2]uint64 `json:"B"`
	C uint64    `json:"C"`
}

// Results mirrors the result counters in the COMPLETE record.
type Results struct {
	TotalPairs             uint64 `json:"total_pairs"`
	GCDFiltered            uint64 `json:"gcd_filtered"`
	ModFiltered            uint64 `json:"mod_filtered"`
	ExactChecks            uint64 `json:"exact_checks"`
	PowerHits              uint64 `json:"power_hits"`
	PrimitiveCounterexamples uint64 `json:"primitive_counterexamples"`
}

// Performance mirrors the performance block in the COMPLETE record.
type Performance struct {
	RuntimeSeconds      float64 `json:"runtime_seconds"`
	AvgRatePairsPerSec  float64 `json:"avg_rate_pairs_per_sec"`
	WorkersUsed         int     `json:"workers_used"`
}

// Verification mirrors the verification block in the COMPLETE record.
type Verification struct {
	Status       string `json:"status"`
	IntegrityHash string `json:"integrity_hash"`
}

// CompleteRecord is emitted exactly once, after all workers finish and
// counters have settled.
type CompleteRecord struct {
	TS           string       `json:"ts"`
	Event        string       `json:"event"`
	RunID        string       `json:"run_id"`
	Signature    [3]uint64    `json:"signature"`
	SearchBounds SearchBounds `json:"search_bounds"`
	Results      Results      `json:"results"`
	Performance  Performance  `json:"performance"`
	Verification Verification `json:"verification"`
}

// Sink appends JSONL records to a path on an afero filesystem, opening,
// writing, and closing the file handle on every record.
type Sink struct {
	fs   afero.Fs
	path string
}

// NewSink returns a Sink that appends to path on fs.
func NewSink(fs afero.Fs, path string) *Sink {
	return &Sink{fs: fs, path: path}
}

// NewOSSink returns a Sink backed by the real OS filesystem, the default
// used by the CLI.
func NewOSSink(path string) *Sink {
	return NewSink(afero.NewOsFs(), path)
}

// Emit marshals record to JSON and appends it as one line. Failures are
// silently dropped: logging must never block or abort the search.
func (s *Sink) Emit(record interface{}) {
	if s == nil {
		return
	}
	line, err := json.Marshal(record)
	if err != nil {
		return
	}
	line = append(line, '\n')

	f, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(line)
}

// fnvOffsetBasis and fnvPrime are the constants fixed by the integrity
// digest contract.
const (
	fnvOffsetBasis uint64 = 0xCBF29CE484222325
	fnvPrime       uint64 = 0x100000001B3
)

// IntegrityDigest computes the 64-bit FNV-1a digest over the fixed field
// order below, each field absorbed as a 64-bit quantity, rendered as 16
// lowercase hex digits.
func IntegrityDigest(x, y, z, astart, amax, bstart, bmax, cmax,
	totalPairs, gcdFiltered, modFiltered, exactChecks, powerHits, primitiveHits uint64) string {

	h := fnvOffsetBasis
	for _, field := range [...]uint64{
		x, y, z, astart, amax, bstart, bmax, cmax,
		totalPairs, gcdFiltered, modFiltered, exactChecks, powerHits, primitiveHits,
	} {
		h = fnv1a64(h, field)
	}
	return fmt.Sprintf("%016x", h)
}

func fnv1a64(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		b := byte(v >> (uint(i) * 8))
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h
}
