package store

import (
	"bytes"
	"fmt"
	"reflect"
	"time"

	"github.com/andreyvit/edbexport"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Objects are stored as a msgpack stream:
//
//	object := typeName:str  count:array-len  (name:str value)*count
//	value  := kind:uint  payload
//
// Kind codes are the edbexport.Kind values and must never be renumbered.
// Nested objects and arrays recurse; an array payload is
// elementType:str count:array-len value*count.

func encodeObject(obj *edbexport.Object) ([]byte, error) {
	var bb bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	enc.Reset(&bb)

	if err := encodeProps(enc, obj); err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

func encodeProps(enc *msgpack.Encoder, obj *edbexport.Object) error {
	if err := enc.EncodeString(obj.TypeName); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(obj.Props)); err != nil {
		return err
	}
	for _, p := range obj.Props {
		if err := enc.EncodeString(p.Name); err != nil {
			return err
		}
		if err := encodeValue(enc, p.Value); err != nil {
			return fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	return nil
}

func encodeValue(enc *msgpack.Encoder, v edbexport.Value) error {
	if v == nil {
		v = edbexport.Null{}
	}
	if obj, ok := v.(*edbexport.Object); ok && obj == nil {
		v = edbexport.Null{}
	}
	kind := v.Kind()
	if err := enc.EncodeUint(uint64(kind)); err != nil {
		return err
	}
	switch v := v.(type) {
	case edbexport.Null:
		return enc.EncodeNil()
	case edbexport.Bool:
		return enc.EncodeBool(bool(v))
	case edbexport.Byte:
		return enc.EncodeUint(uint64(v))
	case edbexport.Int8:
		return enc.EncodeInt(int64(v))
	case edbexport.Int16:
		return enc.EncodeInt(int64(v))
	case edbexport.Int32:
		return enc.EncodeInt(int64(v))
	case edbexport.Int64:
		return enc.EncodeInt(int64(v))
	case edbexport.UInt16:
		return enc.EncodeUint(uint64(v))
	case edbexport.UInt32:
		return enc.EncodeUint(uint64(v))
	case edbexport.UInt64:
		return enc.EncodeUint(uint64(v))
	case edbexport.Char:
		return enc.EncodeInt(int64(v))
	case edbexport.Float32:
		return enc.EncodeFloat32(float32(v))
	case edbexport.Float64:
		return enc.EncodeFloat64(float64(v))
	case edbexport.Decimal:
		return enc.EncodeString(edbexport.FormatDecimal(v))
	case edbexport.DateTime:
		return enc.EncodeString(edbexport.FormatDateTime(v.Time))
	case edbexport.DateTimeOffset:
		return enc.EncodeString(edbexport.FormatDateTimeOffset(v.Time))
	case edbexport.TimeSpan:
		return enc.EncodeInt(int64(v))
	case edbexport.String:
		return enc.EncodeString(string(v))
	case edbexport.CIString:
		return enc.EncodeString(string(v))
	case edbexport.Binary:
		return enc.EncodeBytes([]byte(v))
	case edbexport.Enum:
		if err := enc.EncodeString(v.Type); err != nil {
			return err
		}
		return enc.EncodeString(v.Name)
	case edbexport.GUID:
		return enc.EncodeBytes(v[:])
	case edbexport.Array:
		if err := enc.EncodeString(v.ElementTypeName()); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(v.Items)); err != nil {
			return err
		}
		for _, item := range v.Items {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	case *edbexport.Object:
		return encodeProps(enc, v)
	default:
		return &edbexport.UnsupportedKindError{Type: reflect.TypeOf(v)}
	}
}

func decodeObject(data []byte, obj *edbexport.Object) error {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	r := bytes.NewReader(data)
	dec.Reset(r)

	if err := decodeProps(dec, obj, 0); err != nil {
		return err
	}
	if r.Len() > 0 {
		return fmt.Errorf("%d trailing bytes", r.Len())
	}
	return nil
}

const maxNesting = 64

func decodeProps(dec *msgpack.Decoder, obj *edbexport.Object, depth int) error {
	if depth > maxNesting {
		return fmt.Errorf("nesting deeper than %d", maxNesting)
	}
	var err error
	obj.TypeName, err = dec.DecodeString()
	if err != nil {
		return fmt.Errorf("type name: %w", err)
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return fmt.Errorf("property count: %w", err)
	}
	if n > 0 {
		obj.Props = make([]edbexport.Property, 0, n)
	}
	for i := 0; i < n; i++ {
		name, err := dec.DecodeString()
		if err != nil {
			return fmt.Errorf("property %d: name: %w", i, err)
		}
		v, err := decodeValue(dec, depth)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		obj.Props = append(obj.Props, edbexport.Property{Name: name, Value: v})
	}
	return nil
}

func decodeValue(dec *msgpack.Decoder, depth int) (edbexport.Value, error) {
	code, err := dec.DecodeUint()
	if err != nil {
		return nil, fmt.Errorf("kind: %w", err)
	}
	kind := edbexport.Kind(code)
	switch kind {
	case edbexport.KindNull:
		return edbexport.Null{}, dec.DecodeNil()
	case edbexport.KindBool:
		v, err := dec.DecodeBool()
		return edbexport.Bool(v), err
	case edbexport.KindByte:
		v, err := dec.DecodeUint8()
		return edbexport.Byte(v), err
	case edbexport.KindInt8:
		v, err := dec.DecodeInt8()
		return edbexport.Int8(v), err
	case edbexport.KindInt16:
		v, err := dec.DecodeInt16()
		return edbexport.Int16(v), err
	case edbexport.KindInt32:
		v, err := dec.DecodeInt32()
		return edbexport.Int32(v), err
	case edbexport.KindInt64:
		v, err := dec.DecodeInt64()
		return edbexport.Int64(v), err
	case edbexport.KindUInt16:
		v, err := dec.DecodeUint16()
		return edbexport.UInt16(v), err
	case edbexport.KindUInt32:
		v, err := dec.DecodeUint32()
		return edbexport.UInt32(v), err
	case edbexport.KindUInt64:
		v, err := dec.DecodeUint64()
		return edbexport.UInt64(v), err
	case edbexport.KindChar:
		v, err := dec.DecodeInt32()
		return edbexport.Char(v), err
	case edbexport.KindFloat32:
		v, err := dec.DecodeFloat32()
		return edbexport.Float32(v), err
	case edbexport.KindFloat64:
		v, err := dec.DecodeFloat64()
		return edbexport.Float64(v), err
	case edbexport.KindDecimal:
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		d, err := edbexport.ParseDecimal(s)
		return d, err
	case edbexport.KindDateTime:
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		t, err := edbexport.ParseDateTime(s, time.Local)
		return edbexport.DateTime{Time: t}, err
	case edbexport.KindDateTimeOffset:
		s, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		t, err := edbexport.ParseDateTimeOffset(s)
		return edbexport.DateTimeOffset{Time: t}, err
	case edbexport.KindTimeSpan:
		v, err := dec.DecodeInt64()
		return edbexport.TimeSpan(v), err
	case edbexport.KindString:
		v, err := dec.DecodeString()
		return edbexport.String(v), err
	case edbexport.KindCIString:
		v, err := dec.DecodeString()
		return edbexport.CIString(v), err
	case edbexport.KindBinary:
		v, err := dec.DecodeBytes()
		if v == nil && err == nil {
			v = []byte{}
		}
		return edbexport.Binary(v), err
	case edbexport.KindEnum:
		typ, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		name, err := dec.DecodeString()
		return edbexport.Enum{Type: typ, Name: name}, err
	case edbexport.KindGUID:
		b, err := dec.DecodeBytes()
		if err != nil {
			return nil, err
		}
		id, err := uuid.FromBytes(b)
		return edbexport.GUID(id), err
	case edbexport.KindArray:
		return decodeArray(dec, depth+1)
	case edbexport.KindObject:
		obj := &edbexport.Object{}
		if err := decodeProps(dec, obj, depth+1); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unknown kind code %d", code)
	}
}

func decodeArray(dec *msgpack.Decoder, depth int) (edbexport.Value, error) {
	if depth > maxNesting {
		return nil, fmt.Errorf("nesting deeper than %d", maxNesting)
	}
	elemType, err := dec.DecodeString()
	if err != nil {
		return nil, fmt.Errorf("element type: %w", err)
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, fmt.Errorf("item count: %w", err)
	}
	arr := edbexport.Array{ElementType: elemType}
	if n > 0 {
		arr.Items = make([]edbexport.Value, 0, n)
	}
	for i := 0; i < n; i++ {
		item, err := decodeValue(dec, depth)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		arr.Items = append(arr.Items, item)
	}
	return arr, nil
}
