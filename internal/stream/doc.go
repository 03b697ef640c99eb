// Package stream persists the stream data type in Pebble: entries keyed by
// their (ms, seq) identifier in a byte-sortable encoding, values holding the
// entry's field list in a self-describing varint-length framing.
//
// A Stream handle serializes writers for one (namespace, name) pair and owns
// the stream's last-generated ID, keeping the read-derive-write step atomic
// so identifiers never repeat and never decrease.
package stream
