package logstore

import (
	"sort"
	"time"
)

// ticksPerSecond is the resolution of on-disk timestamps: 100-nanosecond ticks, matching
// FILETIME-style resolution. Ticks are counted from the Unix epoch; this is an internal
// on-disk representation, not a wire format that needs to interoperate with any external
// reader, so the epoch choice is free.
const ticksPerSecond = int64(time.Second / 100)

// ticksFromTime converts a time.Time to 100-ns ticks since the Unix epoch.
func ticksFromTime(t time.Time) int64 {
	return t.Unix()*ticksPerSecond + int64(t.Nanosecond())/100
}

// timeFromTicks converts 100-ns ticks since the Unix epoch back to a time.Time in the
// given fixed UTC offset.
func timeFromTicks(ticks int64, offsetTicks int64, loc *time.Location) time.Time {
	sec := ticks / ticksPerSecond
	nsec := (ticks % ticksPerSecond) * 100
	t := time.Unix(sec, nsec).UTC()
	if loc != nil {
		return t.In(loc)
	}
	return t
}

// minTimestamp is the sentinel "no timestamp filter" value, analogous to DateTime.MinValue:
// callers pass it (or the zero value) to Prune to mean "no minimum timestamp".
var minTimestamp = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// IsMinTimestamp reports whether t is the "no filter" sentinel.
func IsMinTimestamp(t time.Time) bool {
	return !t.After(minTimestamp)
}

// MinTimestamp returns the sentinel value callers pass to mean "no minimum timestamp".
func MinTimestamp() time.Time { return minTimestamp }

// TagSet is an unordered collection of tag names, presented to callers sorted ascending.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from a slice of names, deduplicating.
func NewTagSet(names ...string) TagSet {
	s := make(TagSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Sorted returns the tag names in ascending order.
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Message is the ingress/egress data contract for a single log message. Ingress messages
// have ID == 0 and are assigned an ID by Write; egress messages are immutable and have
// their assigned ID populated.
type Message struct {
	ID                     int64
	Timestamp              time.Time // zone-aware instant; Read also reports its offset in TimezoneOffset
	TimezoneOffset         time.Duration
	HighPrecisionTimestamp int64
	LostMessageCount       int32
	ProcessID              int32
	ProcessName            string
	ApplicationName        string
	LogWriterName          string
	LogLevelName           string
	Text                   string
	Tags                   TagSet

	immutable bool
}

// immutableCopy returns a copy of m marked immutable, for handing to a Read callback.
func (m Message) immutableCopy() *Message {
	cp := m
	cp.immutable = true
	return &cp
}

// IsImmutable reports whether this Message was produced by a Read and must not be mutated
// by the caller (mutation is not actually prevented at the type level — this mirrors the
// spec's "messages returned are marked immutable" contract as an informational flag).
func (m *Message) IsImmutable() bool { return m.immutable }

// utcTicksAndOffset splits m.Timestamp into the on-disk (utc_ticks, offset_ticks) pair.
// ticksFromTime already yields a zone-independent absolute instant (it's built from
// t.Unix()), so utcTicks is that value directly; offsetTicks is carried alongside only so
// the original display zone can be reconstructed on read.
func (m *Message) utcTicksAndOffset() (utcTicks, offsetTicks int64) {
	_, offsetSeconds := m.Timestamp.Zone()
	offsetTicks = int64(offsetSeconds) * ticksPerSecond
	utcTicks = ticksFromTime(m.Timestamp)
	return utcTicks, offsetTicks
}

// messageFromTicks reconstructs the Timestamp field from the stored (utc_ticks,
// offset_ticks) pair: the absolute instant comes from utcTicks alone, with offsetTicks
// only selecting the display zone.
func messageFromTicks(utcTicks, offsetTicks int64) time.Time {
	loc := time.FixedZone("", int(offsetTicks/ticksPerSecond))
	return timeFromTicks(utcTicks, offsetTicks, loc)
}
