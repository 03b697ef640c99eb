package stream

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/flume/internal/storage/pebble"
	"github.com/rzbill/flume/pkg/streamid"
)

// ErrEntryIDTooSmall reports an explicit insert ID that does not advance the
// stream's last generated ID.
var ErrEntryIDTooSmall = errors.New("The ID specified in XADD is equal or smaller than the target stream top item")

// ErrEntryNotFound reports a lookup for an ID with no stored entry.
var ErrEntryNotFound = errors.New("stream entry not found")

// ErrDecodeStreamMeta reports a stored meta record that does not parse.
// Treating it as an absent stream would reset the last generated ID and let
// already-issued IDs be issued again, so it is surfaced instead.
var ErrDecodeStreamMeta = errors.New("failed to decode stream meta record")

// Meta is the per-stream metadata record, stored as JSON under the meta key.
type Meta struct {
	LastIDMs     uint64 `json:"lastIdMs"`
	LastIDSeq    uint64 `json:"lastIdSeq"`
	Size         uint64 `json:"size"`
	EntriesAdded uint64 `json:"entriesAdded"`
	MaxDeletedMs uint64 `json:"maxDeletedMs"`
	MaxDeletedSq uint64 `json:"maxDeletedSeq"`
	CreatedAtMs  int64  `json:"createdAtMs"`
}

// LastID returns the last generated entry ID.
func (m Meta) LastID() streamid.EntryID {
	return streamid.EntryID{Ms: m.LastIDMs, Seq: m.LastIDSeq}
}

// MaxDeletedID returns the largest ID ever removed from the stream.
func (m Meta) MaxDeletedID() streamid.EntryID {
	return streamid.EntryID{Ms: m.MaxDeletedMs, Seq: m.MaxDeletedSq}
}

// Entry is one stored stream entry.
type Entry struct {
	ID     streamid.EntryID
	Fields [][]byte
}

// Stream provides entry operations for one namespace/name pair. All writes
// are serialized by an internal mutex; the cached meta mirrors the persisted
// record.
type Stream struct {
	db        *pebblestore.DB
	namespace string
	name      string

	mu     sync.Mutex
	meta   Meta
	exists bool

	// nowMs supplies the wall clock for auto IDs; replaced in tests.
	nowMs func() uint64
}

// Open initializes a Stream and loads its metadata when present.
func Open(db *pebblestore.DB, namespace, name string) (*Stream, error) {
	s := &Stream{
		db:        db,
		namespace: namespace,
		name:      name,
		nowMs:     func() uint64 { return uint64(time.Now().UnixMilli()) },
	}
	b, err := db.Get(KeyStreamMeta(namespace, name))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return s, nil
		}
		return nil, err
	}
	if jerr := json.Unmarshal(b, &s.meta); jerr != nil {
		return nil, ErrDecodeStreamMeta
	}
	s.exists = true
	return s, nil
}

// Exists reports whether the stream has a persisted meta record.
func (s *Stream) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists
}

// Meta returns a copy of the current metadata.
func (s *Stream) Meta() Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// AddOptions controls entry insertion.
type AddOptions struct {
	// Auto requests full auto-assignment ("*"): both halves derived from the
	// wall clock and the last generated ID.
	Auto bool
	// ID is the insertion request when Auto is false. With AnySeq set only
	// the sequence is derived.
	ID streamid.NewEntryID
}

// Add resolves the final entry ID, encodes fields, and commits entry plus
// updated meta as one batch. The returned ID is the one persisted.
func (s *Stream) Add(ctx context.Context, opts AddOptions, fields [][]byte) (streamid.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveID(opts)
	if err != nil {
		return streamid.EntryID{}, err
	}

	meta := s.meta
	meta.LastIDMs, meta.LastIDSeq = id.Ms, id.Seq
	meta.Size++
	meta.EntriesAdded++
	if !s.exists {
		meta.CreatedAtMs = time.Now().UnixMilli()
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeyEntry(s.namespace, s.name, id), EncodeEntryValue(fields), nil); err != nil {
		return streamid.EntryID{}, err
	}
	if err := s.setMeta(b, meta); err != nil {
		return streamid.EntryID{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return streamid.EntryID{}, err
	}
	s.meta = meta
	s.exists = true
	return id, nil
}

// resolveID turns an insertion request into the final entry ID, holding the
// monotonic invariant against the last generated ID. Caller holds s.mu.
func (s *Stream) resolveID(opts AddOptions) (streamid.EntryID, error) {
	last := s.meta.LastID()
	if opts.Auto {
		return streamid.Next(last, s.nowMs())
	}
	req := opts.ID
	if req.AnySeq {
		if req.Ms < last.Ms {
			return streamid.EntryID{}, ErrEntryIDTooSmall
		}
		if req.Ms == last.Ms {
			// The caller pinned the millisecond, so an exhausted sequence
			// cannot roll into the next one.
			if last.Seq == math.MaxUint64 {
				return streamid.EntryID{}, streamid.ErrLastEntryIDReached
			}
			return streamid.EntryID{Ms: last.Ms, Seq: last.Seq + 1}, nil
		}
		return streamid.EntryID{Ms: req.Ms}, nil
	}
	id := streamid.EntryID{Ms: req.Ms, Seq: req.Seq}
	if !last.Less(id) {
		return streamid.EntryID{}, ErrEntryIDTooSmall
	}
	return id, nil
}

// SetID forces the last generated ID forward, so future auto IDs start past
// it. The new value may not order below the current last generated ID.
func (s *Stream) SetID(ctx context.Context, id streamid.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id.Less(s.meta.LastID()) {
		return ErrEntryIDTooSmall
	}
	meta := s.meta
	meta.LastIDMs, meta.LastIDSeq = id.Ms, id.Seq
	if !s.exists {
		meta.CreatedAtMs = time.Now().UnixMilli()
	}
	b := s.db.NewBatch()
	defer b.Close()
	if err := s.setMeta(b, meta); err != nil {
		return err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return err
	}
	s.meta = meta
	s.exists = true
	return nil
}

// Len returns the number of live entries.
func (s *Stream) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta.Size
}

// Get returns the entry stored under id, or ErrEntryNotFound.
func (s *Stream) Get(id streamid.EntryID) (Entry, error) {
	v, err := s.db.Get(KeyEntry(s.namespace, s.name, id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	fields, err := DecodeEntryValue(v)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, Fields: fields}, nil
}

// Delete removes the given entries, returning how many existed. Meta size and
// the max-deleted watermark are updated in the same batch.
func (s *Stream) Delete(ctx context.Context, ids []streamid.EntryID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewBatch()
	defer b.Close()

	meta := s.meta
	var removed uint64
	for _, id := range ids {
		key := KeyEntry(s.namespace, s.name, id)
		if _, err := s.db.Get(key); err != nil {
			if errors.Is(err, pebble.ErrNotFound) {
				continue
			}
			return 0, err
		}
		if err := b.Delete(key, nil); err != nil {
			return 0, err
		}
		removed++
		if meta.MaxDeletedID().Less(id) {
			meta.MaxDeletedMs, meta.MaxDeletedSq = id.Ms, id.Seq
		}
	}
	if removed == 0 {
		return 0, nil
	}
	meta.Size -= removed
	if err := s.setMeta(b, meta); err != nil {
		return 0, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	s.meta = meta
	return removed, nil
}

func (s *Stream) setMeta(b *pebble.Batch, meta Meta) error {
	buf, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return b.Set(KeyStreamMeta(s.namespace, s.name), buf, nil)
}

// RangeOptions selects an inclusive [Start, End] scan over entry IDs.
type RangeOptions struct {
	Start streamid.EntryID
	End   streamid.EntryID
	// ExcludeStart / ExcludeEnd turn the respective bound exclusive.
	ExcludeStart bool
	ExcludeEnd   bool
	// Reverse scans descending from End to Start.
	Reverse bool
	// Count limits returned entries; 0 means no limit.
	Count uint64
}

// Range returns entries within the boundary IDs in scan order. Boundaries are
// plain IDs with no ownership relation to stored entries; an empty result is
// not an error.
func (s *Stream) Range(ctx context.Context, opts RangeOptions) ([]Entry, error) {
	start, end := opts.Start, opts.End
	if opts.ExcludeStart {
		next, err := streamid.Increment(start)
		if err != nil {
			return nil, nil
		}
		start = next
	}
	if end.Less(start) {
		return nil, nil
	}

	lower := KeyEntry(s.namespace, s.name, start)
	upper := KeyEntry(s.namespace, s.name, end)
	if !opts.ExcludeEnd {
		upper = append(upper, 0x00)
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	prefixLen := len(KeyEntryPrefix(s.namespace, s.name))
	entries := make([]Entry, 0, 16)

	advance, ok := iter.Next, iter.First
	if opts.Reverse {
		advance, ok = iter.Prev, iter.Last
	}
	for valid := ok(); valid; valid = advance() {
		if opts.Count > 0 && uint64(len(entries)) >= opts.Count {
			break
		}
		id, idOK := DecodeEntryID(iter.Key()[prefixLen:])
		if !idOK {
			continue
		}
		fields, err := DecodeEntryValue(iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: id, Fields: fields})
	}
	return entries, nil
}
