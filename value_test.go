package edbexport

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestKindString(t *testing.T) {
	deepEqual(t, KindInt8.String(), "SByte")
	deepEqual(t, KindCIString.String(), "CaseInsensitiveString")
	deepEqual(t, KindObject.String(), "Object")
	deepEqual(t, Kind(99).String(), "Kind(99)")
}

func TestArrayElementTypeName(t *testing.T) {
	tests := []struct {
		name string
		a    Array
		want string
	}{
		{"declared", ArrayOf("Widget", Int32(1)), "Widget"},
		{"uniform", Array{Items: []Value{Int32(1), Int32(2)}}, "Int32"},
		{"nulls skipped", Array{Items: []Value{Null{}, String("x"), nil}}, "String"},
		{"mixed", Array{Items: []Value{Int32(1), String("x")}}, "Object"},
		{"only nulls", Array{Items: []Value{Null{}}}, "Object"},
		{"empty", Array{}, "Object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deepEqual(t, tt.a.ElementTypeName(), tt.want)
		})
	}
}

func TestObjectProps(t *testing.T) {
	obj := NewObject("Users", "1", "User").Add("A", Int32(1)).Add("A", Int32(2))
	obj.Set("A", Int32(3)).Set("B", Bool(true))
	deepEqual(t, obj.Props, []Property{{"A", Int32(3)}, {"A", Int32(2)}, {"B", Bool(true)}})

	v, ok := obj.Get("B")
	deepEqual[Value](t, v, Bool(true))
	deepEqual(t, ok, true)
	_, ok = obj.Get("C")
	deepEqual(t, ok, false)
}

func TestFromAny(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var nilPtr *string
	var nilSlice []int
	str := "x"

	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"nil pointer", nilPtr, Null{}},
		{"nil slice", nilSlice, Null{}},
		{"pointer", &str, String("x")},
		{"int", 7, Int64(7)},
		{"uint8", uint8(7), Byte(7)},
		{"float32", float32(1.5), Float32(1.5)},
		{"bytes", []byte{1}, Binary{1}},
		{"time", when, DateTime{when}},
		{"duration", time.Second, TimeSpan(time.Second)},
		{"uuid", id, GUID(id)},
		{"value", Enum{"E", "A"}, Enum{"E", "A"}},
		{"typed slice", []int32{1, 2}, Array{ElementType: "Int32", Items: []Value{Int32(1), Int32(2)}}},
		{"go array", [2]bool{true, false}, Array{ElementType: "Boolean", Items: []Value{Bool(true), Bool(false)}}},
		{"any slice", []any{1, "a"}, Array{ElementType: "Object", Items: []Value{Int64(1), String("a")}}},
		{"map", map[string]any{"b": 2, "a": "x"}, &Object{TypeName: "Object", Props: []Property{{"a", String("x")}, {"b", Int64(2)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deepEqual(t, must(FromAny(tt.in)), tt.want)
		})
	}

	_, err := FromAny(struct{ X int }{})
	var uke *UnsupportedKindError
	if !errors.As(err, &uke) {
		t.Errorf("** got %v, wanted *UnsupportedKindError", err)
	}
	_, err = FromAny([]any{complex(1, 2)})
	if !errors.As(err, &uke) {
		t.Errorf("** got %v, wanted *UnsupportedKindError", err)
	}
}

func TestIsXMLText(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"", true},
		{"plain", true},
		{"tab\tnewline\ncr\r", true},
		{"Ж 😀", true},
		{"nul\x00", false},
		{"bell\x07", false},
		{"\uFFFE", false},
		{"\uFFFF", false},
		{"bad utf8 \xff", false},
		{"surrogate \xed\xa0\x80", false},
	}
	for _, tt := range tests {
		deepEqual(t, IsXMLText(tt.s), tt.want)
	}
	deepEqual(t, IsXMLChar(0xD800), false)
	deepEqual(t, IsXMLChar(0x10FFFF), true)
}
