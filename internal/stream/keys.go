package stream

import (
	"encoding/binary"

	"github.com/rzbill/flume/pkg/streamid"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - ns/{ns}/stream/{name}/m
// - ns/{ns}/stream/{name}/e/{ms_be8}{seq_be8}
//
// The entry suffix encodes the ID most-significant-first so Pebble's native
// byte order matches EntryID order.

var (
	nsPrefix   = []byte("ns/")
	streamSeg  = []byte("/stream/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
)

const encodedIDLen = 16

// AppendEntryID appends the fixed 16-byte order-preserving encoding of id.
func AppendEntryID(dst []byte, id streamid.EntryID) []byte {
	var b [encodedIDLen]byte
	binary.BigEndian.PutUint64(b[:8], id.Ms)
	binary.BigEndian.PutUint64(b[8:], id.Seq)
	return append(dst, b[:]...)
}

// DecodeEntryID reads the 16-byte encoding back into an EntryID.
func DecodeEntryID(b []byte) (streamid.EntryID, bool) {
	if len(b) < encodedIDLen {
		return streamid.EntryID{}, false
	}
	return streamid.EntryID{
		Ms:  binary.BigEndian.Uint64(b[:8]),
		Seq: binary.BigEndian.Uint64(b[8:16]),
	}, true
}

// KeyStreamMeta builds the stream metadata key.
func KeyStreamMeta(namespace, name string) []byte {
	k := make([]byte, 0, len(namespace)+len(name)+16)
	k = append(k, nsPrefix...)
	k = append(k, namespace...)
	k = append(k, streamSeg...)
	k = append(k, name...)
	k = append(k, metaSuffix...)
	return k
}

// KeyEntry builds the key for one entry.
func KeyEntry(namespace, name string, id streamid.EntryID) []byte {
	k := make([]byte, 0, len(namespace)+len(name)+32)
	k = append(k, nsPrefix...)
	k = append(k, namespace...)
	k = append(k, streamSeg...)
	k = append(k, name...)
	k = append(k, entrySeg...)
	k = AppendEntryID(k, id)
	return k
}

// PrefixUpperBound returns the smallest key greater than every key having
// the given prefix, for use as an iterator UpperBound.
func PrefixUpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// KeyEntryPrefix returns the shared prefix of all entry keys for a stream.
func KeyEntryPrefix(namespace, name string) []byte {
	k := make([]byte, 0, len(namespace)+len(name)+16)
	k = append(k, nsPrefix...)
	k = append(k, namespace...)
	k = append(k, streamSeg...)
	k = append(k, name...)
	k = append(k, entrySeg...)
	return k
}
