package edbexport

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// Summary counts what an export pass produced.
type Summary struct {
	Collections int
	Objects     int
	Redacted    int
	Errors      int
	Exceptions  int

	// Bytes is the document size, and Checksum its XXH64 digest.
	Bytes    int64
	Checksum uint64
}

type checksumWriter struct {
	w io.Writer
	h *xxhash.Digest
	n int64
}

func newChecksumWriter(w io.Writer) *checksumWriter {
	return &checksumWriter{w: w, h: xxhash.New()}
}

func (cw *checksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.h.Write(p[:n])
	return n, err
}

func (cw *checksumWriter) Sum64() uint64 {
	return cw.h.Sum64()
}
