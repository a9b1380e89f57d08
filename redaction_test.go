package edbexport

import (
	"context"
	"testing"
)

func setting(key Value) *Object {
	return NewObject("Settings", "1", "Setting").Add("Key", key).Add("Value", String("v"))
}

func TestRedacts(t *testing.T) {
	r := SettingsRedaction("secret.", "token.")
	tests := []struct {
		name string
		coll string
		obj  *Object
		want bool
	}{
		{"prefix", "Settings", setting(String("secret.apiKey")), true},
		{"second prefix", "Settings", setting(String("token.refresh")), true},
		{"exact prefix", "Settings", setting(String("secret.")), true},
		{"other key", "Settings", setting(String("ui.theme")), false},
		{"case sensitive", "Settings", setting(String("Secret.apiKey")), false},
		{"other collection", "Users", setting(String("secret.apiKey")), false},
		{"case insensitive string key", "Settings", setting(CIString("secret.apiKey")), false},
		{"null key", "Settings", setting(Null{}), false},
		{"no key", "Settings", NewObject("Settings", "1", "Setting"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deepEqual(t, r.Redacts(tt.coll, tt.obj), tt.want)
		})
	}

	if (Redaction{}).Redacts("Settings", setting(String("secret.x"))) {
		t.Error("** zero Redaction redacted an object")
	}
}

func TestRedaction_customCollection(t *testing.T) {
	r := Redaction{Collection: "Config", KeyField: "Name", Prefixes: []string{"private."}}
	obj := NewObject("Config", "1", "Entry").Add("Name", String("private.key"))
	deepEqual(t, r.Redacts("Config", obj), true)
	deepEqual(t, r.Redacts("Settings", obj), false)
}

func TestRedaction_emptyPrefixPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("** no panic")
		}
	}()
	NewExporter(&nopWriter{}, Options{Redaction: SettingsRedaction("")})
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestCanExportObject_countsRedactions(t *testing.T) {
	e, buf := newTestExporter(Options{Redaction: SettingsRedaction("secret.")})
	db := &Database{}
	db.Collection("Settings").
		Add(NewObject("", "1", "Setting").Add("Key", String("secret.a"))).
		Add(NewObject("", "2", "Setting").Add("Key", String("public.b")))
	ensure(Walk(context.Background(), db, e))
	ensure(e.Close())

	deepEqual(t, e.Summary().Redacted, 1)
	deepEqual(t, e.Summary().Objects, 1)
	deepEqual(t, buf.String(), `<Database><Collection name="Settings"><Obj id="2" type="Setting"><S n="Key" v="public.b"></S></Obj></Collection></Database>`)
}
