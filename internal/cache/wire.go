package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Entry layout: magic(4) | version(1) | gen(u64 be) | len(u32 be) | payload(len)

const (
	wireVersion byte = 1
	wireHeader       = 4 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("cache: corrupt entry")
	wireMagic  = [...]byte{'R', 'B', 'X', 'C'}
)

func encodeEntry(gen uint64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(wireHeader + len(payload))

	buf.Write(wireMagic[:])
	buf.WriteByte(wireVersion)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], gen)
	buf.Write(u8[:])

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func decodeEntry(b []byte) (gen uint64, payload []byte, err error) {
	if len(b) < wireHeader || !bytes.Equal(b[:4], wireMagic[:]) || b[4] != wireVersion {
		return 0, nil, ErrCorrupt
	}
	gen = binary.BigEndian.Uint64(b[5:13])
	n := int(binary.BigEndian.Uint32(b[13:17]))
	if n != len(b)-wireHeader {
		return 0, nil, ErrCorrupt
	}
	return gen, b[wireHeader:], nil
}
