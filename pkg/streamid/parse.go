package streamid

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidEntryID reports user-supplied identifier text that does not match
// any recognized form, or a half that overflows 64 bits. The message is part
// of the observable contract and is surfaced to clients verbatim.
var ErrInvalidEntryID = errors.New("Invalid stream ID specified as stream command argument")

// parseUint64 accepts canonical ASCII-decimal only: no signs, no whitespace,
// no partial success.
func parseUint64(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidEntryID
	}
	return v, nil
}

// Parse parses "<ms>-<seq>" or bare "<ms>" into an EntryID. A bare
// millisecond defaults the sequence to 0.
func Parse(text string) (EntryID, error) {
	return parse(text, 0)
}

// ParseRangeStart parses an inclusive range start boundary. The bare
// millisecond form defaults the sequence to 0 so the boundary covers the
// millisecond from its first entry.
func ParseRangeStart(text string) (EntryID, error) {
	return parse(text, 0)
}

// ParseRangeEnd parses an inclusive range end boundary. The bare millisecond
// form defaults the sequence to MaxUint64 so the boundary covers the
// millisecond through its last entry.
func ParseRangeEnd(text string) (EntryID, error) {
	return parse(text, math.MaxUint64)
}

func parse(text string, defaultSeq uint64) (EntryID, error) {
	if ms, seq, ok := strings.Cut(text, "-"); ok {
		m, err := parseUint64(ms)
		if err != nil {
			return EntryID{}, err
		}
		s, err := parseUint64(seq)
		if err != nil {
			return EntryID{}, err
		}
		return EntryID{Ms: m, Seq: s}, nil
	}
	m, err := parseUint64(text)
	if err != nil {
		return EntryID{}, err
	}
	return EntryID{Ms: m, Seq: defaultSeq}, nil
}

// ParseNew parses an insertion target: "<ms>-<seq>", bare "<ms>" (sequence 0),
// or "<ms>-*" which requests an auto-assigned sequence for that millisecond.
// A bare "*" requesting full auto-assignment is a caller convention resolved
// above this parser.
func ParseNew(text string) (NewEntryID, error) {
	if ms, seq, ok := strings.Cut(text, "-"); ok {
		m, err := parseUint64(ms)
		if err != nil {
			return NewEntryID{}, err
		}
		if seq == "*" {
			return NewEntryID{Ms: m, AnySeq: true}, nil
		}
		s, err := parseUint64(seq)
		if err != nil {
			return NewEntryID{}, err
		}
		return NewEntryID{Ms: m, Seq: s}, nil
	}
	m, err := parseUint64(text)
	if err != nil {
		return NewEntryID{}, err
	}
	return NewEntryID{Ms: m}, nil
}
