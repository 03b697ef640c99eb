package streamid

import (
	"errors"
	"math"
	"testing"
)

func TestParseExact(t *testing.T) {
	got, err := Parse("123-456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 123, Seq: 456}) {
		t.Fatalf("got %v", got)
	}
}

func TestParseBareMillisecond(t *testing.T) {
	got, err := Parse("123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 123, Seq: 0}) {
		t.Fatalf("got %v", got)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"-",
		"1-",
		"-1",
		"1- 2",
		" 1-2",
		"1-2 ",
		"+1-2",
		"1--2",
		"1-2-3",
		"1.5-0",
		"18446744073709551616",      // ms overflow
		"1-18446744073709551616",    // seq overflow
		"0x10-0",
		"1-*", // wildcard only valid for ParseNew
	}
	for _, in := range cases {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidEntryID) {
			t.Fatalf("Parse(%q): expected ErrInvalidEntryID, got %v", in, err)
		}
	}
	if ErrInvalidEntryID.Error() != "Invalid stream ID specified as stream command argument" {
		t.Fatalf("unexpected message: %q", ErrInvalidEntryID.Error())
	}
}

func TestParseBoundaryValues(t *testing.T) {
	got, err := Parse("18446744073709551615-18446744073709551615")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsMax() {
		t.Fatalf("got %v", got)
	}
	got, err = Parse("0-0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsMin() {
		t.Fatalf("got %v", got)
	}
}

func TestParseRangeStartDefaultsSeqZero(t *testing.T) {
	got, err := ParseRangeStart("123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 123, Seq: 0}) {
		t.Fatalf("got %v", got)
	}
}

func TestParseRangeEndDefaultsSeqMax(t *testing.T) {
	got, err := ParseRangeEnd("123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 123, Seq: math.MaxUint64}) {
		t.Fatalf("got %v", got)
	}
	// Explicit seq wins over the default.
	got, err = ParseRangeEnd("123-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 123, Seq: 5}) {
		t.Fatalf("got %v", got)
	}
}

func TestParseNew(t *testing.T) {
	got, err := ParseNew("5-*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (NewEntryID{Ms: 5, AnySeq: true}) {
		t.Fatalf("got %+v", got)
	}

	got, err = ParseNew("5-7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (NewEntryID{Ms: 5, Seq: 7}) {
		t.Fatalf("got %+v", got)
	}

	got, err = ParseNew("5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (NewEntryID{Ms: 5, Seq: 0}) {
		t.Fatalf("got %+v", got)
	}
}

func TestParseNewInvalid(t *testing.T) {
	for _, in := range []string{"", "*", "*-*", "x-*", "5-**", "5-*x", "5- *"} {
		if _, err := ParseNew(in); !errors.Is(err, ErrInvalidEntryID) {
			t.Fatalf("ParseNew(%q): expected ErrInvalidEntryID, got %v", in, err)
		}
	}
}
