package logstore

import (
	"testing"
	"time"
)

func TestIsMinTimestamp(t *testing.T) {
	if !IsMinTimestamp(MinTimestamp()) {
		t.Fatalf("MinTimestamp() should report as the min timestamp")
	}
	if !IsMinTimestamp(time.Time{}) {
		t.Fatalf("the zero time.Time should also count as the min timestamp")
	}
	if IsMinTimestamp(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("an ordinary timestamp should not report as the min timestamp")
	}
}

func TestUtcTicksRoundTrip(t *testing.T) {
	loc := time.FixedZone("TEST", 2*3600)
	original := time.Date(2026, 7, 29, 15, 30, 0, 0, loc)
	m := &Message{Timestamp: original}

	utcTicks, offsetTicks := m.utcTicksAndOffset()
	recovered := messageFromTicks(utcTicks, offsetTicks)

	if !recovered.Equal(original) {
		t.Fatalf("round trip mismatch: got %v, want %v", recovered, original)
	}
	if _, off := recovered.Zone(); off != 2*3600 {
		t.Fatalf("recovered offset = %d, want %d", off, 2*3600)
	}
}

func TestTagSetSorted(t *testing.T) {
	s := NewTagSet("zeta", "alpha", "mu", "alpha")
	got := s.Sorted()
	want := []string{"alpha", "mu", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("Sorted() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted() = %v, want %v", got, want)
		}
	}
}

func TestMessageImmutableCopy(t *testing.T) {
	m := Message{Text: "hi"}
	cp := m.immutableCopy()
	if !cp.IsImmutable() {
		t.Fatalf("immutableCopy() should mark the copy immutable")
	}
	if m.IsImmutable() {
		t.Fatalf("the original message should not be affected")
	}
}
