package edbexport

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"strings"
	"testing"
)

func blob(n int) Binary {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

// chunksOf decodes the Chunk children of a Bin element.
func chunksOf(t *testing.T, markup string) [][]byte {
	t.Helper()
	var bin struct {
		Chunks []string `xml:"Chunk"`
	}
	if err := xml.Unmarshal([]byte(markup), &bin); err != nil {
		t.Fatalf("** %v", err)
	}
	var result [][]byte
	for _, c := range bin.Chunks {
		result = append(result, must(base64.StdEncoding.DecodeString(c)))
	}
	return result
}

func TestBinary_inlineUpTo1024(t *testing.T) {
	for _, n := range []int{0, 1, 1024} {
		data := blob(n)
		got := exportOne(t, Options{}, data)
		want := `<Bin n="p" v="` + base64.StdEncoding.EncodeToString(data) + `"></Bin>`
		deepEqual(t, got, want)
	}
}

func TestBinary_chunked(t *testing.T) {
	tests := []struct {
		size   int
		chunks []int
	}{
		{1025, []int{1025}},
		{binaryChunkSize, []int{binaryChunkSize}},
		{binaryChunkSize + 1, []int{binaryChunkSize, 1}},
		{2*binaryChunkSize + 100, []int{binaryChunkSize, binaryChunkSize, 100}},
	}
	for _, tt := range tests {
		data := blob(tt.size)
		got := exportOne(t, Options{}, data)
		if !strings.HasPrefix(got, `<Bin n="p"><Chunk>`) {
			t.Errorf("** %d: unexpected markup %.60s", tt.size, got)
			continue
		}
		chunks := chunksOf(t, got)
		var sizes []int
		for _, c := range chunks {
			sizes = append(sizes, len(c))
		}
		deepEqual(t, sizes, tt.chunks)
		if !bytes.Equal(bytes.Join(chunks, nil), data) {
			t.Errorf("** %d: chunks do not reassemble the blob", tt.size)
		}
	}
}

func TestBinary_overLimit(t *testing.T) {
	opt := Options{BinaryDataSizeLimit: 2000}
	deepEqual(t, exportOne(t, opt, blob(2001)), `<Bin n="p" bytes="2001"></Bin>`)

	got := exportOne(t, opt, blob(2000))
	deepEqual(t, len(chunksOf(t, got)), 1)

	// The limit wins over inline encoding for small blobs too.
	deepEqual(t, exportOne(t, Options{BinaryDataSizeLimit: 10}, blob(11)), `<Bin n="p" bytes="11"></Bin>`)
}

func TestBinary_defaultLimit(t *testing.T) {
	e, _ := newTestExporter(Options{})
	deepEqual(t, e.binLimit, DefaultBinaryDataSizeLimit)
}
