package stream

import (
	"encoding/binary"
	"errors"
)

// ErrDecodeEntryValue reports a stored entry value that does not parse as a
// field sequence: a truncated or malformed length varint, or a declared
// length past the end of the blob. The message is part of the observable
// contract.
var ErrDecodeEntryValue = errors.New("failed to decode stream entry value")

// EncodeEntryValue packs an ordered field list into one blob: per field, a
// uvarint byte length followed by the raw bytes. There is deliberately no
// terminator, field count, or checksum; the blob must stay byte-compatible
// with previously persisted values, so any envelope belongs in a layer above.
func EncodeEntryValue(fields [][]byte) []byte {
	size := 0
	for _, f := range fields {
		size += binary.MaxVarintLen64 + len(f)
	}
	out := make([]byte, 0, size)
	var tmp [binary.MaxVarintLen64]byte
	for _, f := range fields {
		n := binary.PutUvarint(tmp[:], uint64(len(f)))
		out = append(out, tmp[:n]...)
		out = append(out, f...)
	}
	return out
}

// DecodeEntryValue unpacks a blob produced by EncodeEntryValue, consuming it
// exactly. An empty blob decodes to an empty field list. Partial decodes are
// never returned.
func DecodeEntryValue(blob []byte) ([][]byte, error) {
	fields := make([][]byte, 0, 4)
	for len(blob) > 0 {
		l, n := binary.Uvarint(blob)
		if n <= 0 {
			return nil, ErrDecodeEntryValue
		}
		blob = blob[n:]
		if l > uint64(len(blob)) {
			return nil, ErrDecodeEntryValue
		}
		fields = append(fields, append([]byte(nil), blob[:l]...))
		blob = blob[l:]
	}
	return fields, nil
}
