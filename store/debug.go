package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/andreyvit/edbexport"
)

type DumpFlags uint64

const (
	DumpCollectionHeaders = DumpFlags(1 << iota)
	DumpObjects
	DumpStats
	DumpIndices

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the store contents for debugging and tests.
func (tx *Tx) Dump(f DumpFlags) string {
	var buf strings.Builder
	for _, name := range tx.Collections() {
		tx.dumpCollection(&buf, f, name)
	}
	return buf.String()
}

func (tx *Tx) dumpCollection(w *strings.Builder, f DumpFlags, name string) {
	s, err := tx.Stats(name)
	if f.Contains(DumpCollectionHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%d objects)\n", name, s.Objects)
	}
	if err != nil {
		fmt.Fprintf(w, "%s ** ERROR: %v\n", name, err)
	}
	if f.Contains(DumpStats) {
		fmt.Fprintf(w, "%s.stats: data_size = %d, data_alloc = %d, deleted = %d\n", name, s.DataSize, s.DataAlloc, s.DeletionCounter)
	}
	if f.Contains(DumpIndices) {
		indices, _ := tx.Indices(name)
		for i, idx := range indices {
			fmt.Fprintf(w, "%s.i%d = %s\n", name, i+1, formatIndex(idx))
		}
	}
	if f.Contains(DumpObjects) {
		if f.Contains(DumpStats) || f.Contains(DumpIndices) {
			fmt.Fprintln(w, dumpSep2)
		}
		buck := tx.stx.Bucket(name, dataBucket)
		if buck == nil {
			return
		}
		c := buck.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			obj, rec, err := decodeRecord(name, k, v)
			if err != nil {
				fmt.Fprintf(w, "%s/%s = ** ERROR: %v\n", name, k, err)
				continue
			}
			fmt.Fprintf(w, "%s/%s = (m%d) %s\n", name, k, rec.ModCount, formatObject(obj))
		}
	}
}

func formatIndex(idx edbexport.Index) string {
	var buf strings.Builder
	for i, f := range idx.Fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(f.Name)
		if !f.Ascending {
			buf.WriteString(" desc")
		}
	}
	return buf.String()
}

func formatObject(obj *edbexport.Object) string {
	var buf strings.Builder
	appendObject(&buf, obj)
	return buf.String()
}

func appendObject(w *strings.Builder, obj *edbexport.Object) {
	w.WriteString(obj.TypeName)
	w.WriteByte('{')
	for i, p := range obj.Props {
		if i > 0 {
			w.WriteString(", ")
		}
		w.WriteString(p.Name)
		w.WriteString(": ")
		appendValue(w, p.Value)
	}
	w.WriteByte('}')
}

func appendValue(w *strings.Builder, v edbexport.Value) {
	switch v := v.(type) {
	case nil, edbexport.Null:
		w.WriteString("null")
	case *edbexport.Object:
		if v == nil {
			w.WriteString("null")
			return
		}
		appendObject(w, v)
	case edbexport.Array:
		w.WriteString(v.ElementTypeName())
		w.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				w.WriteString(", ")
			}
			appendValue(w, item)
		}
		w.WriteByte(']')
	case edbexport.String:
		fmt.Fprintf(w, "%q", string(v))
	case edbexport.CIString:
		fmt.Fprintf(w, "ci%q", string(v))
	case edbexport.Binary:
		fmt.Fprintf(w, "(%d) %x", len(v), []byte(v))
	case edbexport.GUID:
		w.WriteString(edbexport.FormatGUID(v))
	case edbexport.Enum:
		w.WriteString(v.Type)
		w.WriteByte('.')
		w.WriteString(v.Name)
	case edbexport.DateTime:
		w.WriteString(edbexport.FormatDateTime(v.Time))
	case edbexport.DateTimeOffset:
		w.WriteString(edbexport.FormatDateTimeOffset(v.Time))
	case edbexport.TimeSpan:
		w.WriteString(edbexport.FormatTimeSpan(time.Duration(v)))
	default:
		fmt.Fprintf(w, "%v", v)
	}
}
