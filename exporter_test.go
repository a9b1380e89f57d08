package edbexport

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReportProperty(t *testing.T) {
	nested := &Object{TypeName: "Address"}
	nested.Add("City", String("Oslo"))

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null{}, `<Null n="p"></Null>`},
		{"nil", nil, `<Null n="p"></Null>`},
		{"nil object", (*Object)(nil), `<Null n="p"></Null>`},
		{"bool", Bool(true), `<Bl n="p" v="true"></Bl>`},
		{"byte", Byte(255), `<B n="p" v="255"></B>`},
		{"int8", Int8(-128), `<I1 n="p" v="-128"></I1>`},
		{"int16", Int16(-300), `<I2 n="p" v="-300"></I2>`},
		{"int32", Int32(70000), `<I4 n="p" v="70000"></I4>`},
		{"int64", Int64(math.MinInt64), `<I8 n="p" v="-9223372036854775808"></I8>`},
		{"uint16", UInt16(65535), `<U2 n="p" v="65535"></U2>`},
		{"uint32", UInt32(4294967295), `<U4 n="p" v="4294967295"></U4>`},
		{"uint64", UInt64(math.MaxUint64), `<U8 n="p" v="18446744073709551615"></U8>`},
		{"char", Char('A'), `<Ch n="p" v="A"></Ch>`},
		{"char illegal", Char(0), `<Ch n="p" cp="0"></Ch>`},
		{"float32", Float32(0.1), `<Fl n="p" v="0.1"></Fl>`},
		{"float64", Float64(1e100), `<Db n="p" v="1e+100"></Db>`},
		{"float64 -inf", Float64(math.Inf(-1)), `<Db n="p" v="-INF"></Db>`},
		{"float64 nan", Float64(math.NaN()), `<Db n="p" v="NaN"></Db>`},
		{"decimal", NewDecimal(12345, 2), `<Dc n="p" v="123.45"></Dc>`},
		{"decimal negative scale", NewDecimal(5, -2), `<Dc n="p" v="500"></Dc>`},
		{"datetime zoned", DateTime{time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("", 5*3600))}, `<DT n="p" v="2024-03-01T07:00:00Z"></DT>`},
		{"datetime utc", DateTime{time.Date(2024, 3, 1, 12, 30, 0, 500000000, time.UTC)}, `<DT n="p" v="2024-03-01T12:30:00.5Z"></DT>`},
		{"datetime offset", DateTimeOffset{time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("", -5*3600))}, `<DTO n="p" v="2024-03-01T12:30:00-05:00"></DTO>`},
		{"timespan", TimeSpan(90 * time.Minute), `<TS n="p" v="01:30:00"></TS>`},
		{"string", String("a<b"), `<S n="p" v="a&lt;b"></S>`},
		{"string illegal", String("bad\x01"), `<S64 n="p" v="YmFkAQ=="></S64>`},
		{"ci string", CIString("Hi"), `<CIS n="p" v="Hi"></CIS>`},
		{"ci string illegal", CIString("\uFFFE"), `<CIS64 n="p" v="77++"></CIS64>`},
		{"binary empty", Binary{}, `<Bin n="p" v=""></Bin>`},
		{"binary", Binary{1, 2, 3}, `<Bin n="p" v="AQID"></Bin>`},
		{"enum", Enum{Type: "Color", Name: "Red"}, `<En n="p" v="Red"></En>`},
		{"guid", GUID(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")), `<ID n="p" v="6ba7b810-9dad-11d1-80b4-00c04fd430c8"></ID>`},
		{"array", ArrayOf("Int32", Int32(1), Null{}), `<Array n="p" elementType="Int32"><I4 v="1"></I4><Null></Null></Array>`},
		{"array derived", Array{Items: []Value{String("x"), String("y")}}, `<Array n="p" elementType="String"><S v="x"></S><S v="y"></S></Array>`},
		{"array empty", Array{}, `<Array n="p" elementType="Object"></Array>`},
		{"object", nested, `<Obj n="p" type="Address"><S n="City" v="Oslo"></S></Obj>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deepEqual(t, exportOne(t, Options{}, tt.v), tt.want)
		})
	}
}

type foreignValue struct {
	Value
}

func TestReportProperty_unsupported(t *testing.T) {
	e, _ := newTestExporter(Options{})
	ensure(e.BeginExport())
	ensure(e.BeginCollection("C"))

	obj := NewObject("C", "1", "T").Add("ok", Int32(1)).Add("bad", foreignValue{})
	err := ExportObject(e, "C", obj)

	var uke *UnsupportedKindError
	if !errors.As(err, &uke) {
		t.Fatalf("** got %v, wanted *UnsupportedKindError", err)
	}
	if !strings.Contains(uke.Error(), "foreignValue") {
		t.Errorf("** message %q does not name the type", uke.Error())
	}
	var oe *ObjectError
	if !errors.As(err, &oe) {
		t.Fatalf("** got %v, wanted *ObjectError", err)
	}
	deepEqual(t, oe.Collection, "C")
	deepEqual(t, oe.ObjectID, "1")
	deepEqual(t, oe.Property, "bad")
}

func TestReportAny(t *testing.T) {
	e, buf := newTestExporter(Options{})
	ensure(e.BeginExport())
	ensure(e.BeginCollection("C"))
	must(e.BeginObject("1", "T"))
	var nilPtr *int
	ensure(e.ReportAny("a", nilPtr))
	ensure(e.ReportAny("b", 42))
	ensure(e.ReportAny("c", []int16{1, 2}))
	if err := e.ReportAny("d", struct{}{}); err == nil {
		t.Error("** struct{} accepted")
	}
	ensure(e.Close())
	doc := buf.String()
	wellFormed(t, doc)
	want := `<Null n="a"></Null><I8 n="b" v="42"></I8><Array n="c" elementType="Int16"><I2 v="1"></I2><I2 v="2"></I2></Array>`
	if !strings.Contains(doc, want) {
		t.Errorf("** got %s, wanted it to contain %s", doc, want)
	}
}

func TestIndexAndErrors(t *testing.T) {
	e, buf := newTestExporter(Options{})
	ensure(e.BeginExport())
	ensure(e.BeginCollection("Users"))
	ensure(ExportIndex(e, NewIndex(Desc("Age"), Asc("Name"))))
	ensure(e.ReportError("cannot load <u2>"))
	ensure(e.EndCollection())
	ensure(e.EndExport())
	ensure(e.Close())

	deepEqual(t, buf.String(), `<Database><Collection name="Users">`+
		`<Index><Index field="Age" asc="false"></Index><Index field="Name" asc="true"></Index></Index>`+
		`<Error>cannot load &lt;u2&gt;</Error>`+
		`</Collection></Database>`)
	deepEqual(t, e.Summary().Errors, 1)
}

func TestIllegalNamesFallBackToBase64(t *testing.T) {
	e, buf := newTestExporter(Options{})
	ensure(e.BeginExport())
	ensure(e.BeginCollection("Users"))
	must(e.BeginObject("a\x01", "T\x00"))
	ensure(e.ReportProperty("n\x02", Int32(1)))
	ensure(e.EndObject())
	ensure(e.ReportError("x\x00"))
	ensure(e.ReportException(errors.New("m\x03")))
	ensure(e.EndCollection())
	ensure(e.EndExport())
	ensure(e.Close())

	doc := buf.String()
	wellFormed(t, doc)
	deepEqual(t, doc, `<Database><Collection name="Users">`+
		`<Obj id64="YQE=" type64="VAA="><I4 n64="bgI=" v="1"></I4></Obj>`+
		`<Error64>eAA=</Error64>`+
		`<Exception message64="bQM="><StackTrace></StackTrace></Exception>`+
		`</Collection></Database>`)
}

func TestProtocolViolationsPanic(t *testing.T) {
	tests := []struct {
		name string
		f    func(e *Exporter)
	}{
		{"EndObject without BeginObject", func(e *Exporter) {
			ensure(e.BeginExport())
			ensure(e.BeginCollection("C"))
			ensure(e.EndObject())
		}},
		{"BeginCollection outside export", func(e *Exporter) {
			ensure(e.BeginCollection("C"))
		}},
		{"BeginExport twice", func(e *Exporter) {
			ensure(e.BeginExport())
			ensure(e.BeginExport())
		}},
		{"ReportIndexField outside index", func(e *Exporter) {
			ensure(e.BeginExport())
			ensure(e.BeginCollection("C"))
			ensure(e.ReportIndexField("x", true))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExporter(Options{})
			defer func() {
				if recover() == nil {
					t.Error("** no panic")
				}
			}()
			tt.f(e)
		})
	}
}

func TestNewExporter_negativeLimitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("** no panic")
		}
	}()
	NewExporter(&strings.Builder{}, Options{BinaryDataSizeLimit: -1})
}

func TestClose_balancesInterruptedOutput(t *testing.T) {
	e, buf := newTestExporter(Options{Indent: true})
	ensure(e.BeginExport())
	ensure(e.BeginCollection("C"))
	must(e.BeginObject("1", "T"))
	ensure(e.ReportProperty("a", ArrayOf("Int32", Int32(1))))

	ensure(e.Close())
	ensure(e.Close())
	wellFormed(t, buf.String())

	s := e.Summary()
	deepEqual(t, s.Bytes, int64(buf.Len()))
	deepEqual(t, s.Objects, 1)
}

func TestSummary_checksumIsStable(t *testing.T) {
	render := func() Summary {
		e, _ := newTestExporter(Options{})
		ensure(Walk(context.Background(), sampleDatabase(), e))
		ensure(e.Close())
		return e.Summary()
	}
	a, b := render(), render()
	deepEqual(t, a.Checksum, b.Checksum)
	if a.Checksum == 0 {
		t.Error("** zero checksum")
	}
}
