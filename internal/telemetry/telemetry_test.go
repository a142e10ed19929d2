package telemetry

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestSink_EmitsOneLinePerRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewSink(fs, "run.jsonl")

	sink.Emit(StartRecord{Event: "START", RunID: "r1"})
	sink.Emit(PowerHitRecord{Event: "POWER_HIT", A: 2, B: 2, C: 2})
	sink.Emit(CompleteRecord{Event: "COMPLETE", RunID: "r1"})

	data, err := afero.ReadFile(fs, "run.jsonl")
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), data)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	var events []string
	for scanner.Scan() {
		var rec map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSON line: %v", err)
		}
		events = append(events, rec["event"].(string))
	}
	want := []string{"START", "POWER_HIT", "COMPLETE"}
	for i, e := range want {
		if events[i] != e {
			t.Errorf("line %d: event = %q, want %q", i, events[i], e)
		}
	}
}

func TestSink_NilIsNoop(t *testing.T) {
	var s *Sink
	s.Emit(StartRecord{Event: "START"}) // must not panic
}

func TestIntegrityDigest_Deterministic(t *testing.T) {
	d1 := IntegrityDigest(3, 4, 5, 1, 100, 1, 100, 10000000, 10000, 4000, 5990, 10, 0, 0)
	d2 := IntegrityDigest(3, 4, 5, 1, 100, 1, 100, 10000000, 10000, 4000, 5990, 10, 0, 0)
	if d1 != d2 {
		t.Fatalf("digest not deterministic: %s != %s", d1, d2)
	}
	if len(d1) != 16 {
		t.Fatalf("expected 16 hex digits, got %d (%s)", len(d1), d1)
	}
}

func TestIntegrityDigest_OrderSensitive(t *testing.T) {
	d1 := IntegrityDigest(3, 4, 5, 1, 100, 1, 100, 10000000, 10000, 4000, 5990, 10, 1, 0)
	d2 := IntegrityDigest(3, 4, 5, 1, 100, 1, 100, 10000000, 10000, 4000, 5990, 10, 0, 1)
	if d1 == d2 {
		t.Fatal("swapping power_hits/primitive_hits must change the digest")
	}
}
