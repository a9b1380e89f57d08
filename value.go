package edbexport

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a property value variant.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindByte
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt16
	KindUInt32
	KindUInt64
	KindChar
	KindFloat32
	KindFloat64
	KindDecimal
	KindDateTime
	KindDateTimeOffset
	KindTimeSpan
	KindString
	KindCIString
	KindBinary
	KindEnum
	KindGUID
	KindArray
	KindObject

	kindCount
)

var kindNames = [kindCount]string{
	KindNull:           "Null",
	KindBool:           "Boolean",
	KindByte:           "Byte",
	KindInt8:           "SByte",
	KindInt16:          "Int16",
	KindInt32:          "Int32",
	KindInt64:          "Int64",
	KindUInt16:         "UInt16",
	KindUInt32:         "UInt32",
	KindUInt64:         "UInt64",
	KindChar:           "Char",
	KindFloat32:        "Single",
	KindFloat64:        "Double",
	KindDecimal:        "Decimal",
	KindDateTime:       "DateTime",
	KindDateTimeOffset: "DateTimeOffset",
	KindTimeSpan:       "TimeSpan",
	KindString:         "String",
	KindCIString:       "CaseInsensitiveString",
	KindBinary:         "Binary",
	KindEnum:           "Enum",
	KindGUID:           "Guid",
	KindArray:          "Array",
	KindObject:         "Object",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + FormatInt(int64(k)) + ")"
}

// Value is a single property value. The set of implementations is closed:
// only the types declared in this package satisfy it.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	Null     struct{}
	Bool     bool
	Byte     uint8
	Int8     int8
	Int16    int16
	Int32    int32
	Int64    int64
	UInt16   uint16
	UInt32   uint32
	UInt64   uint64
	Char     rune
	Float32  float32
	Float64  float64
	String   string
	CIString string
	Binary   []byte
	TimeSpan time.Duration
	GUID     uuid.UUID

	// Decimal is a base-10 number Unscaled × 10^-Scale.
	Decimal struct {
		Unscaled *big.Int
		Scale    int32
	}

	// DateTime is a point in time without an explicit offset. UTC values are
	// marked as such in the canonical text; all others are written as wall
	// clock time.
	DateTime struct {
		time.Time
	}

	// DateTimeOffset is a point in time with its UTC offset preserved.
	DateTimeOffset struct {
		time.Time
	}

	// Enum is a member of an enumeration, identified by its canonical name.
	Enum struct {
		Type string
		Name string
	}

	// Array is an ordered list of values. ElementType names the declared
	// element type; when empty it is derived from the items.
	Array struct {
		ElementType string
		Items       []Value
	}
)

func (Null) Kind() Kind           { return KindNull }
func (Bool) Kind() Kind           { return KindBool }
func (Byte) Kind() Kind           { return KindByte }
func (Int8) Kind() Kind           { return KindInt8 }
func (Int16) Kind() Kind          { return KindInt16 }
func (Int32) Kind() Kind          { return KindInt32 }
func (Int64) Kind() Kind          { return KindInt64 }
func (UInt16) Kind() Kind         { return KindUInt16 }
func (UInt32) Kind() Kind         { return KindUInt32 }
func (UInt64) Kind() Kind         { return KindUInt64 }
func (Char) Kind() Kind           { return KindChar }
func (Float32) Kind() Kind        { return KindFloat32 }
func (Float64) Kind() Kind        { return KindFloat64 }
func (Decimal) Kind() Kind        { return KindDecimal }
func (DateTime) Kind() Kind       { return KindDateTime }
func (DateTimeOffset) Kind() Kind { return KindDateTimeOffset }
func (TimeSpan) Kind() Kind       { return KindTimeSpan }
func (String) Kind() Kind         { return KindString }
func (CIString) Kind() Kind       { return KindCIString }
func (Binary) Kind() Kind         { return KindBinary }
func (Enum) Kind() Kind           { return KindEnum }
func (GUID) Kind() Kind           { return KindGUID }
func (Array) Kind() Kind          { return KindArray }
func (*Object) Kind() Kind        { return KindObject }

func (Null) isValue()           {}
func (Bool) isValue()           {}
func (Byte) isValue()           {}
func (Int8) isValue()           {}
func (Int16) isValue()          {}
func (Int32) isValue()          {}
func (Int64) isValue()          {}
func (UInt16) isValue()         {}
func (UInt32) isValue()         {}
func (UInt64) isValue()         {}
func (Char) isValue()           {}
func (Float32) isValue()        {}
func (Float64) isValue()        {}
func (Decimal) isValue()        {}
func (DateTime) isValue()       {}
func (DateTimeOffset) isValue() {}
func (TimeSpan) isValue()       {}
func (String) isValue()         {}
func (CIString) isValue()       {}
func (Binary) isValue()         {}
func (Enum) isValue()           {}
func (GUID) isValue()           {}
func (Array) isValue()          {}
func (*Object) isValue()        {}

// NewDecimal returns unscaled × 10^-scale.
func NewDecimal(unscaled int64, scale int32) Decimal {
	return Decimal{Unscaled: big.NewInt(unscaled), Scale: scale}
}

func (d Decimal) String() string { return FormatDecimal(d) }

// ArrayOf builds an array with an explicit element type.
func ArrayOf(elementType string, items ...Value) Array {
	return Array{ElementType: elementType, Items: items}
}

// ElementTypeName returns the declared element type, or a name derived from
// the items: the common kind name when all non-null items share a kind,
// "Object" otherwise.
func (a Array) ElementTypeName() string {
	if a.ElementType != "" {
		return a.ElementType
	}
	common := KindNull
	for _, item := range a.Items {
		if item == nil {
			continue
		}
		k := item.Kind()
		if k == KindNull {
			continue
		}
		if common == KindNull {
			common = k
		} else if common != k {
			return KindObject.String()
		}
	}
	if common == KindNull {
		return KindObject.String()
	}
	return common.String()
}

// Property is a named value. An empty Name denotes an anonymous value such
// as an array element.
type Property struct {
	Name  string
	Value Value
}

// Object is a persisted record (when ID is set) or an embedded property bag.
type Object struct {
	ID         string
	TypeName   string
	Collection string
	Props      []Property
}

func NewObject(collection, id, typeName string) *Object {
	return &Object{
		ID:         id,
		TypeName:   typeName,
		Collection: collection,
	}
}

// Add appends a property, keeping any existing one with the same name.
func (obj *Object) Add(name string, v Value) *Object {
	obj.Props = append(obj.Props, Property{name, v})
	return obj
}

// Set replaces the first property with the given name, or appends one.
func (obj *Object) Set(name string, v Value) *Object {
	for i := range obj.Props {
		if obj.Props[i].Name == name {
			obj.Props[i].Value = v
			return obj
		}
	}
	return obj.Add(name, v)
}

func (obj *Object) Get(name string) (Value, bool) {
	for _, p := range obj.Props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}
