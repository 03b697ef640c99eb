package streamid

import (
	"errors"
	"math"
	"strconv"
)

// ErrLastEntryIDReached reports that the 128-bit identifier space of a stream
// is fully consumed. Fatal for further writes to that stream; never retried.
var ErrLastEntryIDReached = errors.New("last possible entry id reached")

// EntryID is a stream entry identifier: a millisecond timestamp plus a
// sequence number that disambiguates entries sharing the same millisecond.
// Ordering is ms-major, seq-minor, ascending.
type EntryID struct {
	Ms  uint64
	Seq uint64
}

// Min returns the smallest possible entry ID, 0-0.
func Min() EntryID { return EntryID{} }

// Max returns the largest possible entry ID. It is a terminal sentinel: it
// has no successor.
func Max() EntryID { return EntryID{Ms: math.MaxUint64, Seq: math.MaxUint64} }

// IsMin reports whether id is the minimum ID.
func (id EntryID) IsMin() bool { return id.Ms == 0 && id.Seq == 0 }

// IsMax reports whether id is the maximum ID.
func (id EntryID) IsMax() bool { return id.Ms == math.MaxUint64 && id.Seq == math.MaxUint64 }

// Compare returns -1, 0, or 1 ordering id against other.
func (id EntryID) Compare(other EntryID) int {
	switch {
	case id.Ms < other.Ms:
		return -1
	case id.Ms > other.Ms:
		return 1
	case id.Seq < other.Seq:
		return -1
	case id.Seq > other.Seq:
		return 1
	}
	return 0
}

// Less reports whether id orders strictly before other.
func (id EntryID) Less(other EntryID) bool { return id.Compare(other) < 0 }

// String renders the canonical "<ms>-<seq>" form.
func (id EntryID) String() string {
	return strconv.FormatUint(id.Ms, 10) + "-" + strconv.FormatUint(id.Seq, 10)
}

// NewEntryID is a parsed insertion request. When AnySeq is set, Seq is unset
// and the final sequence is derived from the stream's last generated ID at
// insert time.
type NewEntryID struct {
	Ms     uint64
	Seq    uint64
	AnySeq bool
}

// Increment returns the successor of id. When Seq saturates it rolls into the
// next millisecond; when both halves saturate there is no successor and
// ErrLastEntryIDReached is returned with the zero EntryID. The error is
// authoritative: the returned ID carries no meaning on failure.
func Increment(id EntryID) (EntryID, error) {
	if id.Seq < math.MaxUint64 {
		return EntryID{Ms: id.Ms, Seq: id.Seq + 1}, nil
	}
	if id.Ms < math.MaxUint64 {
		return EntryID{Ms: id.Ms + 1}, nil
	}
	return EntryID{}, ErrLastEntryIDReached
}

// Next derives the ID for a new entry from the stream's last generated ID and
// the current wall clock in milliseconds. When the clock has advanced past
// lastID the sequence resets; otherwise (same millisecond, or clock moved
// backward) the last ID is incremented so issued IDs never decrease.
func Next(lastID EntryID, nowMs uint64) (EntryID, error) {
	if nowMs > lastID.Ms {
		return EntryID{Ms: nowMs}, nil
	}
	return Increment(lastID)
}
