// Package streamid implements stream entry identifiers: the (ms, seq)
// composite ID type with its total order, the monotonic next-ID derivation
// used on insert, and the textual parsers for exact, bare-millisecond, and
// wildcard-sequence forms.
//
// Everything here is a pure function of its inputs. The per-stream
// last-generated ID is owned by the caller (see internal/stream), which must
// treat read-derive-write as one atomic step per stream.
package streamid
