package edbexport

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"io"
	"log/slog"
	"os"
	"reflect"
	"time"
)

const (
	// DefaultBinaryDataSizeLimit applies when Options.BinaryDataSizeLimit is 0.
	DefaultBinaryDataSizeLimit = 16 * 1024 * 1024

	// Blobs up to this size are written inline as a single attribute.
	inlineBinaryLimit = 1024

	// Larger blobs are split into Chunk elements of at most this many bytes.
	binaryChunkSize = 49152
)

// Element and attribute names of the wire format.
const (
	elDatabase   = "Database"
	elCollection = "Collection"
	elIndex      = "Index"
	elObject     = "Obj"
	elArray      = "Array"
	elBinary     = "Bin"
	elChunk      = "Chunk"
	elNull       = "Null"
	elError      = "Error"
	elException  = "Exception"
	elStackTrace = "StackTrace"

	attrName        = "n"
	attrValue       = "v"
	attrID          = "id"
	attrType        = "type"
	attrField       = "field"
	attrAsc         = "asc"
	attrBytes       = "bytes"
	attrElementType = "elementType"
	attrMessage     = "message"
	attrCollection  = "name"
	attrCodePoint   = "cp"
)

// Sink receives a database traversal. Drivers call it in protocol order:
//
//	BeginExport
//	  (CanExportCollection → BeginCollection
//	     (BeginIndex ReportIndexField* EndIndex)*
//	     (CanExportObject → BeginObject ReportProperty* EndObject | ReportError | ReportException)*
//	   EndCollection)*
//	EndExport
//
// A nil error means the export can continue.
type Sink interface {
	BeginExport() error
	EndExport() error

	CanExportCollection(name string) bool
	BeginCollection(name string) error
	EndCollection() error

	BeginIndex() error
	ReportIndexField(field string, ascending bool) error
	EndIndex() error

	CanExportObject(obj *Object) bool
	// BeginObject returns the object ID to use, which may differ from id.
	BeginObject(id, typeName string) (string, error)
	ReportProperty(name string, v Value) error
	EndObject() error

	ReportError(msg string) error
	ReportException(err error) error
}

type Options struct {
	// BinaryDataSizeLimit is the largest blob whose bytes are exported.
	// Larger blobs are reported by size only.
	BinaryDataSizeLimit int

	// Indent makes the output human-readable.
	Indent bool

	Redaction Redaction

	// SkipCollections are never exported.
	SkipCollections []string

	Logger  *slog.Logger
	Verbose bool
}

// Exporter writes a database traversal as XML. It implements Sink.
type Exporter struct {
	enc      *xml.Encoder
	out      *checksumWriter
	closer   io.Closer
	logger   *slog.Logger
	verbose  bool
	binLimit int
	redact   Redaction
	skip     map[string]bool

	stack      []string
	collection string
	summary    Summary
	b64buf     []byte
	closed     bool
}

var _ Sink = (*Exporter)(nil)

// NewExporter returns an exporter writing to w. The caller keeps ownership
// of w; Close flushes but does not close it.
func NewExporter(w io.Writer, opt Options) *Exporter {
	if opt.BinaryDataSizeLimit == 0 {
		opt.BinaryDataSizeLimit = DefaultBinaryDataSizeLimit
	}
	if opt.BinaryDataSizeLimit < 0 {
		panic("edbexport: negative BinaryDataSizeLimit")
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}

	out := newChecksumWriter(w)
	enc := xml.NewEncoder(out)
	if opt.Indent {
		enc.Indent("", "\t")
	}

	e := &Exporter{
		enc:      enc,
		out:      out,
		logger:   opt.Logger,
		verbose:  opt.Verbose,
		binLimit: opt.BinaryDataSizeLimit,
		redact:   opt.Redaction.resolved(),
	}
	if len(opt.SkipCollections) > 0 {
		e.skip = make(map[string]bool, len(opt.SkipCollections))
		for _, name := range opt.SkipCollections {
			e.skip[name] = true
		}
	}
	return e
}

// CreateFile returns an exporter that owns a newly created file at path.
func CreateFile(path string, opt Options) (*Exporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	e := NewExporter(f, opt)
	e.closer = f
	return e, nil
}

// Summary describes what has been written so far. Bytes and Checksum are
// final only after Close.
func (e *Exporter) Summary() Summary {
	s := e.summary
	s.Bytes = e.out.n
	s.Checksum = e.out.Sum64()
	return s
}

// Close ends any elements left open by an interrupted traversal, flushes the
// output, and closes the underlying file if the exporter owns one. Only the
// first call has any effect.
func (e *Exporter) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	var err error
	if n := len(e.stack); n > 0 {
		e.logger.LogAttrs(context.Background(), slog.LevelWarn, "export: closing unterminated elements", slog.Int("depth", n), slog.String("innermost", e.stack[n-1]))
		for len(e.stack) > 0 && err == nil {
			err = e.end()
		}
	}
	if ferr := e.enc.Flush(); err == nil {
		err = ferr
	}
	if e.closer != nil {
		if cerr := e.closer.Close(); err == nil {
			err = cerr
		}
		e.closer = nil
	}
	return err
}

func (e *Exporter) BeginExport() error {
	if len(e.stack) != 0 {
		protocolErrf("BeginExport inside %s", e.stack[len(e.stack)-1])
	}
	return e.start(elDatabase)
}

func (e *Exporter) EndExport() error {
	e.expect(elDatabase)
	if err := e.end(); err != nil {
		return err
	}
	s := e.summary
	e.logger.LogAttrs(context.Background(), slog.LevelInfo, "export: done",
		slog.Int("collections", s.Collections),
		slog.Int("objects", s.Objects),
		slog.Int("redacted", s.Redacted),
		slog.Int("errors", s.Errors),
		slog.Int("exceptions", s.Exceptions))
	return nil
}

func (e *Exporter) CanExportCollection(name string) bool {
	return !e.skip[name]
}

func (e *Exporter) BeginCollection(name string) error {
	e.expect(elDatabase)
	e.collection = name
	e.summary.Collections++
	if e.verbose {
		e.logger.LogAttrs(context.Background(), slog.LevelDebug, "export: collection", slog.String("coll", name))
	}
	return e.start(elCollection, attr(attrCollection, name))
}

func (e *Exporter) EndCollection() error {
	e.expect(elCollection)
	e.collection = ""
	return e.end()
}

func (e *Exporter) BeginIndex() error {
	e.expect(elCollection)
	return e.start(elIndex)
}

func (e *Exporter) ReportIndexField(field string, ascending bool) error {
	e.expect(elIndex)
	return e.leaf(elIndex, attr(attrField, field), attr(attrAsc, FormatBool(ascending)))
}

func (e *Exporter) EndIndex() error {
	e.expect(elIndex)
	return e.end()
}

// CanExportObject applies the redaction policy. Objects without a collection
// name are judged as members of the collection being exported.
func (e *Exporter) CanExportObject(obj *Object) bool {
	coll := obj.Collection
	if coll == "" {
		coll = e.collection
	}
	if e.redact.Redacts(coll, obj) {
		e.summary.Redacted++
		if e.verbose {
			e.logger.LogAttrs(context.Background(), slog.LevelDebug, "export: redacted", slog.String("coll", coll), slog.String("id", obj.ID))
		}
		return false
	}
	return true
}

func (e *Exporter) BeginObject(id, typeName string) (string, error) {
	e.expect(elCollection)
	e.summary.Objects++
	return id, e.start(elObject, attr(attrID, id), attr(attrType, typeName))
}

func (e *Exporter) EndObject() error {
	e.expect(elObject)
	return e.end()
}

func (e *Exporter) ReportError(msg string) error {
	e.summary.Errors++
	return e.textElement(elError, msg)
}

// ReportProperty writes one typed element. Only values outside the known
// variant set fail, with *UnsupportedKindError.
func (e *Exporter) ReportProperty(name string, v Value) error {
	switch v := v.(type) {
	case nil, Null:
		return e.leaf(elNull, named(name)...)
	case Enum:
		return e.scalar("En", name, v.Name)
	case Bool:
		return e.scalar("Bl", name, FormatBool(bool(v)))
	case Byte:
		return e.scalar("B", name, FormatUint(uint64(v)))
	case Char:
		return e.reportChar(name, rune(v))
	case DateTime:
		return e.scalar("DT", name, FormatDateTime(v.Time))
	case Decimal:
		return e.scalar("Dc", name, FormatDecimal(v))
	case Float64:
		return e.scalar("Db", name, FormatFloat(float64(v), 64))
	case Int16:
		return e.scalar("I2", name, FormatInt(int64(v)))
	case Int32:
		return e.scalar("I4", name, FormatInt(int64(v)))
	case Int64:
		return e.scalar("I8", name, FormatInt(int64(v)))
	case Int8:
		return e.scalar("I1", name, FormatInt(int64(v)))
	case Float32:
		return e.scalar("Fl", name, FormatFloat(float64(v), 32))
	case UInt16:
		return e.scalar("U2", name, FormatUint(uint64(v)))
	case UInt32:
		return e.scalar("U4", name, FormatUint(uint64(v)))
	case UInt64:
		return e.scalar("U8", name, FormatUint(uint64(v)))
	case String:
		return e.reportText("S", name, string(v))
	case CIString:
		return e.reportText("CIS", name, string(v))
	case TimeSpan:
		return e.scalar("TS", name, FormatTimeSpan(time.Duration(v)))
	case DateTimeOffset:
		return e.scalar("DTO", name, FormatDateTimeOffset(v.Time))
	case GUID:
		return e.scalar("ID", name, FormatGUID(v))
	case Binary:
		return e.reportBinary(name, v)
	case Array:
		return e.reportArray(name, v)
	case *Object:
		if v == nil {
			return e.leaf(elNull, named(name)...)
		}
		return e.reportNested(name, v)
	default:
		return &UnsupportedKindError{Type: reflect.TypeOf(v)}
	}
}

// ReportAny converts v with FromAny and reports it.
func (e *Exporter) ReportAny(name string, v any) error {
	val, err := FromAny(v)
	if err != nil {
		return err
	}
	return e.ReportProperty(name, val)
}

func (e *Exporter) scalar(tag, name, text string) error {
	return e.leaf(tag, append(named(name), attr(attrValue, text))...)
}

// reportText writes legal text as-is under tag, and anything else as the
// Base64 of its UTF-8 bytes under tag+"64".
func (e *Exporter) reportText(tag, name, s string) error {
	if IsXMLText(s) {
		return e.scalar(tag, name, s)
	}
	return e.scalar(tag+"64", name, base64.StdEncoding.EncodeToString([]byte(s)))
}

// reportChar writes a character that cannot appear in XML by its decimal
// code point.
func (e *Exporter) reportChar(name string, r rune) error {
	if IsXMLChar(r) {
		return e.scalar("Ch", name, string(r))
	}
	return e.leaf("Ch", append(named(name), attr(attrCodePoint, FormatInt(int64(r))))...)
}

func (e *Exporter) reportArray(name string, a Array) error {
	err := e.start(elArray, append(named(name), attr(attrElementType, a.ElementTypeName()))...)
	if err != nil {
		return err
	}
	for _, item := range a.Items {
		if err := e.ReportProperty("", item); err != nil {
			return err
		}
	}
	return e.end()
}

func (e *Exporter) reportNested(name string, obj *Object) error {
	err := e.start(elObject, append(named(name), attr(attrType, obj.TypeName))...)
	if err != nil {
		return err
	}
	for _, p := range obj.Props {
		if err := e.ReportProperty(p.Name, p.Value); err != nil {
			return err
		}
	}
	return e.end()
}

func (e *Exporter) start(name string, attrs ...xml.Attr) error {
	err := e.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
	if err != nil {
		return err
	}
	e.stack = append(e.stack, name)
	return nil
}

func (e *Exporter) end() error {
	n := len(e.stack)
	if n == 0 {
		protocolErrf("end of element without a matching start")
	}
	name := e.stack[n-1]
	e.stack = e.stack[:n-1]
	return e.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func (e *Exporter) leaf(name string, attrs ...xml.Attr) error {
	if err := e.start(name, attrs...); err != nil {
		return err
	}
	return e.end()
}

// textElement writes text as character data, or as Base64 under name+"64"
// when XML cannot carry it.
func (e *Exporter) textElement(name, text string) error {
	if !IsXMLText(text) {
		name, text = name+"64", base64.StdEncoding.EncodeToString([]byte(text))
	}
	if err := e.start(name); err != nil {
		return err
	}
	if text != "" {
		if err := e.enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return e.end()
}

// expect panics unless the innermost open element is name; calls out of
// protocol order are programming errors in the driver.
func (e *Exporter) expect(name string) {
	if n := len(e.stack); n == 0 || e.stack[n-1] != name {
		innermost := "<none>"
		if n > 0 {
			innermost = e.stack[n-1]
		}
		protocolErrf("expected to be inside %s, but innermost element is %s", name, innermost)
	}
}

// attr falls back to Base64 under name+"64" for values XML cannot carry,
// the same way S64 does for strings.
func attr(name, value string) xml.Attr {
	if !IsXMLText(value) {
		name, value = name+"64", base64.StdEncoding.EncodeToString([]byte(value))
	}
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func named(name string) []xml.Attr {
	if name == "" {
		return nil
	}
	return []xml.Attr{attr(attrName, name)}
}
