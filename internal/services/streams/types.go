package streamsvc

import (
	"github.com/rzbill/flume/internal/stream"
	"github.com/rzbill/flume/pkg/streamid"
)

// AddRequest inserts one entry.
type AddRequest struct {
	Namespace string
	Stream    string
	// ID is the textual insertion target: "*", "<ms>-*", "<ms>-<seq>", or "<ms>".
	// Empty behaves like "*".
	ID string
	// Fields holds the entry's field strings in order, conventionally
	// alternating name/value pairs.
	Fields [][]byte
	// NoMkStream rejects the insert when the stream does not exist yet.
	NoMkStream bool
}

// RangeRequest scans entries between two textual boundaries.
type RangeRequest struct {
	Namespace string
	Stream    string
	// Start and End accept "<ms>", "<ms>-<seq>", the shorthands "-" (minimum)
	// and "+" (maximum), and a "(" prefix marking the bound exclusive.
	Start string
	End   string
	// Reverse scans from End down to Start.
	Reverse bool
	// Count limits returned entries; 0 applies the configured default cap.
	Count uint64
	// Filter is an optional CEL expression evaluated per entry.
	Filter string
}

// TrimRequest drops entries from the head of a stream.
type TrimRequest struct {
	Namespace string
	Stream    string
	Strategy  stream.TrimStrategy
	MaxLen    uint64
	// MinID is the textual boundary for TrimMinID.
	MinID string
}

// Info summarizes one stream.
type Info struct {
	Name         string            `json:"name"`
	Length       uint64            `json:"length"`
	LastID       streamid.EntryID  `json:"lastId"`
	MaxDeletedID streamid.EntryID  `json:"maxDeletedId"`
	EntriesAdded uint64            `json:"entriesAdded"`
	FirstEntryID *streamid.EntryID `json:"firstEntryId,omitempty"`
	LastEntryID  *streamid.EntryID `json:"lastEntryId,omitempty"`
	CreatedAtMs  int64             `json:"createdAtMs"`
}
