// Package pebblestore wraps Pebble with a configurable fsync policy plus the
// batch, point, and iterator operations the stream store needs. Key ordering
// is byte-lexicographic, which callers rely on by encoding entry IDs
// most-significant-first.
package pebblestore
