package edbexport

import (
	"encoding/base64"
	"encoding/xml"
)

// reportBinary writes a blob as a single attribute when it is small, as a
// sequence of Chunk elements when it is within the size limit, and as a bare
// byte count otherwise.
func (e *Exporter) reportBinary(name string, data []byte) error {
	n := len(data)
	attrs := named(name)
	if n > e.binLimit {
		return e.leaf(elBinary, append(attrs, attr(attrBytes, FormatInt(int64(n))))...)
	}
	if n <= inlineBinaryLimit {
		return e.leaf(elBinary, append(attrs, attr(attrValue, base64.StdEncoding.EncodeToString(data)))...)
	}

	if err := e.start(elBinary, attrs...); err != nil {
		return err
	}
	for off := 0; off < n; off += binaryChunkSize {
		end := min(off+binaryChunkSize, n)
		if err := e.writeChunk(data[off:end]); err != nil {
			return err
		}
	}
	return e.end()
}

func (e *Exporter) writeChunk(chunk []byte) error {
	size := base64.StdEncoding.EncodedLen(len(chunk))
	if cap(e.b64buf) < size {
		e.b64buf = make([]byte, base64.StdEncoding.EncodedLen(binaryChunkSize))
	}
	buf := e.b64buf[:size]
	base64.StdEncoding.Encode(buf, chunk)

	if err := e.start(elChunk); err != nil {
		return err
	}
	if err := e.enc.EncodeToken(xml.CharData(buf)); err != nil {
		return err
	}
	return e.end()
}
