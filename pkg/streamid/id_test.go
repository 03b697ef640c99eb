package streamid

import (
	"errors"
	"math"
	"testing"
)

func TestIncrementSeq(t *testing.T) {
	got, err := Increment(EntryID{Ms: 5, Seq: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 5, Seq: 10}) {
		t.Fatalf("got %v", got)
	}
}

func TestIncrementSeqRollover(t *testing.T) {
	got, err := Increment(EntryID{Ms: 7, Seq: math.MaxUint64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 8, Seq: 0}) {
		t.Fatalf("got %v", got)
	}
}

func TestIncrementExhausted(t *testing.T) {
	got, err := Increment(Max())
	if !errors.Is(err, ErrLastEntryIDReached) {
		t.Fatalf("expected ErrLastEntryIDReached, got %v", err)
	}
	if got != (EntryID{}) {
		t.Fatalf("expected zero id on failure, got %v", got)
	}
	if err.Error() != "last possible entry id reached" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestNextClockAdvanced(t *testing.T) {
	got, err := Next(EntryID{Ms: 1000, Seq: 42}, 1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (EntryID{Ms: 1001, Seq: 0}) {
		t.Fatalf("got %v", got)
	}
}

func TestNextSameMillisecondAndClockRegression(t *testing.T) {
	// Fresh stream at now=1000.
	a, err := Next(EntryID{}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != (EntryID{Ms: 1000, Seq: 0}) {
		t.Fatalf("got %v", a)
	}
	// Same millisecond: sequence advances.
	b, err := Next(a, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != (EntryID{Ms: 1000, Seq: 1}) {
		t.Fatalf("got %v", b)
	}
	// Clock went backward: sequence still advances, ms held.
	c, err := Next(b, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (EntryID{Ms: 1000, Seq: 2}) {
		t.Fatalf("got %v", c)
	}
}

func TestNextExhausted(t *testing.T) {
	if _, err := Next(Max(), 0); !errors.Is(err, ErrLastEntryIDReached) {
		t.Fatalf("expected ErrLastEntryIDReached, got %v", err)
	}
}

func TestCompareOrdering(t *testing.T) {
	cases := []struct {
		a, b EntryID
		want int
	}{
		{EntryID{1, 0}, EntryID{2, 0}, -1},
		{EntryID{2, 0}, EntryID{1, math.MaxUint64}, 1},
		{EntryID{3, 4}, EntryID{3, 5}, -1},
		{EntryID{3, 5}, EntryID{3, 5}, 0},
		{Min(), Max(), -1},
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Fatalf("Compare(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if want := c.want < 0; c.a.Less(c.b) != want {
			t.Fatalf("Less(%v, %v) != %v", c.a, c.b, want)
		}
	}
}

func TestString(t *testing.T) {
	if s := (EntryID{Ms: 123, Seq: 456}).String(); s != "123-456" {
		t.Fatalf("got %q", s)
	}
	if s := Max().String(); s != "18446744073709551615-18446744073709551615" {
		t.Fatalf("got %q", s)
	}
}
