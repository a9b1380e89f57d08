package edbexport

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrStop is returned by a Sink to ask the driver to stop the export early.
// Drivers stop issuing calls and return it to their caller.
var ErrStop = errors.New("export stopped")

// UnsupportedKindError reports a value outside the known variant set. It means
// the encoder has fallen behind the persistence schema and is fatal for the
// export pass.
type UnsupportedKindError struct {
	Type reflect.Type
}

func (e *UnsupportedKindError) Error() string {
	if e.Type == nil {
		return "unsupported property value type: <nil>"
	}
	return "unsupported property value type: " + typeName(e.Type)
}

func unsupported(v any) error {
	return &UnsupportedKindError{Type: reflect.TypeOf(v)}
}

// ObjectError attaches collection, object and property context to an error
// raised while exporting an object.
type ObjectError struct {
	Collection string
	ObjectID   string
	Property   string
	Err        error
}

func objectErrf(coll, id, prop string, err error) error {
	return &ObjectError{coll, id, prop, err}
}

func (e *ObjectError) Unwrap() error {
	return e.Err
}

func (e *ObjectError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Collection)
	if e.ObjectID != "" {
		buf.WriteByte('/')
		buf.WriteString(e.ObjectID)
	}
	if e.Property != "" {
		buf.WriteByte('.')
		buf.WriteString(e.Property)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

func typeName(t reflect.Type) string {
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

func protocolErrf(format string, args ...any) {
	panic(fmt.Errorf("edbexport: "+format, args...))
}
