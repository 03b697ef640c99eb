package stream

import (
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/rzbill/flume/pkg/streamid"
)

// TrimStrategy selects how Trim decides which entries to drop.
type TrimStrategy int

const (
	TrimNone TrimStrategy = iota
	// TrimMaxLen drops oldest entries until at most MaxLen remain.
	TrimMaxLen
	// TrimMinID drops entries with IDs ordering below MinID.
	TrimMinID
)

// TrimOptions configures a Trim call.
type TrimOptions struct {
	Strategy TrimStrategy
	MaxLen   uint64
	MinID    streamid.EntryID
}

// compactTrimThreshold is the removed-entry count past which a trim triggers a
// manual compaction of the stream's entry keyspace.
const compactTrimThreshold = 1024

// Trim removes entries from the head of the stream per the strategy and
// returns the number removed. Deletes and the meta update commit as one
// batch.
func (s *Stream) Trim(ctx context.Context, opts TrimOptions) (uint64, error) {
	if opts.Strategy == TrimNone {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	meta := s.meta
	if opts.Strategy == TrimMaxLen && meta.Size <= opts.MaxLen {
		return 0, nil
	}

	prefix := KeyEntryPrefix(s.namespace, s.name)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: PrefixUpperBound(prefix)})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	b := s.db.NewBatch()
	defer b.Close()

	var removed uint64
	for ok := iter.First(); ok; ok = iter.Next() {
		id, idOK := DecodeEntryID(iter.Key()[len(prefix):])
		if !idOK {
			continue
		}
		switch opts.Strategy {
		case TrimMaxLen:
			if meta.Size-removed <= opts.MaxLen {
				goto done
			}
		case TrimMinID:
			if !id.Less(opts.MinID) {
				goto done
			}
		}
		if err := b.Delete(iter.Key(), nil); err != nil {
			return 0, err
		}
		removed++
		if meta.MaxDeletedID().Less(id) {
			meta.MaxDeletedMs, meta.MaxDeletedSq = id.Ms, id.Seq
		}
	}
done:
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
	if removed >= compactTrimThreshold {
		_ = s.db.CompactRange(prefix, PrefixUpperBound(prefix))
	}
	return removed, nil
}
