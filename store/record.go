package store

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const (
	recordFormatVer1 = 1

	checksumSize    = 8
	minRecordSize   = 3 + checksumSize
	maxSupportedVer = recordFormatVer1
)

// record is one stored object:
//
//	uvarint version | uvarint mod count | uvarint data size | data | xxhash64(data) LE
//
// Data is the msgpack object encoding produced by encodeObject.
type record struct {
	Ver      uint64
	ModCount uint64
	Data     []byte
}

func appendRecord(buf []byte, modCount uint64, data []byte) []byte {
	buf = binary.AppendUvarint(buf, recordFormatVer1)
	buf = binary.AppendUvarint(buf, modCount)
	buf = binary.AppendUvarint(buf, uint64(len(data)))
	buf = append(buf, data...)
	return binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(data))
}

func (r *record) decode(raw []byte) error {
	data := raw
	if len(data) < minRecordSize {
		return dataErrf(raw, 0, nil, "invalid record: at least %d bytes required", minRecordSize)
	}

	v, n := binary.Uvarint(data)
	if n <= 0 {
		return dataErrf(raw, len(raw)-len(data), nil, "invalid record: bad version")
	}
	if v == 0 || v > maxSupportedVer {
		return dataErrf(raw, len(raw)-len(data), nil, "invalid record: unsupported version %d", v)
	}
	r.Ver, data = v, data[n:]

	v, n = binary.Uvarint(data)
	if n <= 0 {
		return dataErrf(raw, len(raw)-len(data), nil, "invalid record: bad mod count")
	}
	r.ModCount, data = v, data[n:]

	size, n := binary.Uvarint(data)
	if n <= 0 {
		return dataErrf(raw, len(raw)-len(data), nil, "invalid record: bad data size")
	}
	data = data[n:]

	if uint64(len(data)) != size+checksumSize {
		return dataErrf(raw, len(raw)-len(data), nil, "invalid record: got %d bytes for data+checksum, expected %d bytes", len(data), size+checksumSize)
	}
	r.Data = data[:size]
	stored := binary.LittleEndian.Uint64(data[size:])
	if actual := xxhash.Sum64(r.Data); actual != stored {
		return dataErrf(raw, len(raw)-checksumSize, nil, "invalid record: checksum mismatch, stored %016x, actual %016x", stored, actual)
	}
	return nil
}

func (r *record) String() string {
	return fmt.Sprintf("v%d m%d (%d)", r.Ver, r.ModCount, len(r.Data))
}
