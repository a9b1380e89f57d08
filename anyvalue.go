package edbexport

import (
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	byteSliceType = reflect.TypeOf([]byte(nil))
	valueType     = reflect.TypeOf((*Value)(nil)).Elem()
)

// FromAny converts a dynamically typed Go value into a Value. It accepts the
// Value variants themselves, Go scalars, time.Time (as DateTime),
// time.Duration (as TimeSpan), uuid.UUID, slices and arrays (as Array) and
// map[string]any (as a nested Object with sorted keys). Nil, including typed
// nil pointers, becomes Null. Anything else yields *UnsupportedKindError.
func FromAny(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		if o, ok := v.(*Object); ok && o == nil {
			return Null{}, nil
		}
		return v, nil
	case bool:
		return Bool(v), nil
	case uint8:
		return Byte(v), nil
	case int8:
		return Int8(v), nil
	case int16:
		return Int16(v), nil
	case int32:
		return Int32(v), nil
	case int64:
		return Int64(v), nil
	case int:
		return Int64(v), nil
	case uint16:
		return UInt16(v), nil
	case uint32:
		return UInt32(v), nil
	case uint64:
		return UInt64(v), nil
	case uint:
		return UInt64(v), nil
	case float32:
		return Float32(v), nil
	case float64:
		return Float64(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Binary(v), nil
	case time.Time:
		return DateTime{v}, nil
	case time.Duration:
		return TimeSpan(v), nil
	case uuid.UUID:
		return GUID(v), nil
	case map[string]any:
		return objectFromMap(v)
	case []any:
		return arrayFromSlice(reflect.ValueOf(v), KindObject.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return Null{}, nil
		}
		return arrayFromSlice(rv, elementTypeName(rv.Type().Elem()))
	case reflect.Array:
		return arrayFromSlice(rv, elementTypeName(rv.Type().Elem()))
	}
	return nil, unsupported(v)
}

func arrayFromSlice(rv reflect.Value, elemType string) (Value, error) {
	n := rv.Len()
	items := make([]Value, n)
	for i := 0; i < n; i++ {
		item, err := FromAny(rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		items[i] = item
	}
	return Array{ElementType: elemType, Items: items}, nil
}

func objectFromMap(m map[string]any) (Value, error) {
	if m == nil {
		return Null{}, nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	obj := &Object{TypeName: KindObject.String()}
	for _, k := range keys {
		v, err := FromAny(m[k])
		if err != nil {
			return nil, err
		}
		obj.Add(k, v)
	}
	return obj, nil
}

func elementTypeName(t reflect.Type) string {
	if t == byteSliceType {
		return KindBinary.String()
	}
	if t.Implements(valueType) && t.Kind() == reflect.Interface {
		return KindObject.String()
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool.String()
	case reflect.Uint8:
		return KindByte.String()
	case reflect.Int8:
		return KindInt8.String()
	case reflect.Int16:
		return KindInt16.String()
	case reflect.Int32:
		return KindInt32.String()
	case reflect.Int64, reflect.Int:
		return KindInt64.String()
	case reflect.Uint16:
		return KindUInt16.String()
	case reflect.Uint32:
		return KindUInt32.String()
	case reflect.Uint64, reflect.Uint:
		return KindUInt64.String()
	case reflect.Float32:
		return KindFloat32.String()
	case reflect.Float64:
		return KindFloat64.String()
	case reflect.String:
		return KindString.String()
	}
	return typeName(t)
}
