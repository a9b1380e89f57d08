package edbexport

import (
	"bytes"
	"encoding/xml"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestExporter(opt Options) (*Exporter, *bytes.Buffer) {
	if opt.Logger == nil {
		opt.Logger = quietLogger
	}
	var buf bytes.Buffer
	return NewExporter(&buf, opt), &buf
}

// wellFormed checks that doc parses as XML with balanced elements.
func wellFormed(t testing.TB, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("** not well-formed: %v\n%s", err, doc)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if depth != 0 {
		t.Fatalf("** unbalanced document, depth %d\n%s", depth, doc)
	}
}

// exportOne renders a single property inside a one-object document and
// returns the property's markup.
func exportOne(t testing.TB, opt Options, v Value) string {
	t.Helper()
	e, buf := newTestExporter(opt)
	ensure(e.BeginExport())
	ensure(e.BeginCollection("C"))
	must(e.BeginObject("1", "T"))
	ensure(e.ReportProperty("p", v))
	ensure(e.EndObject())
	ensure(e.EndCollection())
	ensure(e.EndExport())
	ensure(e.Close())

	doc := buf.String()
	wellFormed(t, doc)
	const head = `<Database><Collection name="C"><Obj id="1" type="T">`
	const tail = `</Obj></Collection></Database>`
	if !strings.HasPrefix(doc, head) || !strings.HasSuffix(doc, tail) {
		t.Fatalf("** unexpected document: %s", doc)
	}
	return doc[len(head) : len(doc)-len(tail)]
}
