package edbexport

import "strings"

const (
	// DefaultRedactedCollection is the collection holding generic settings.
	DefaultRedactedCollection = "Settings"

	// DefaultRedactedKeyField holds the setting name.
	DefaultRedactedKeyField = "Key"
)

// Redaction excludes settings objects whose key starts with one of Prefixes.
// It keeps key material that is stored as generic settings out of exports.
// The zero value redacts nothing.
type Redaction struct {
	// Collection defaults to DefaultRedactedCollection.
	Collection string
	// KeyField defaults to DefaultRedactedKeyField.
	KeyField string
	Prefixes []string
}

// SettingsRedaction returns a policy for the Settings collection's Key field.
func SettingsRedaction(prefixes ...string) Redaction {
	return Redaction{Prefixes: prefixes}
}

func (r Redaction) resolved() Redaction {
	if r.Collection == "" {
		r.Collection = DefaultRedactedCollection
	}
	if r.KeyField == "" {
		r.KeyField = DefaultRedactedKeyField
	}
	for _, p := range r.Prefixes {
		if p == "" {
			panic("edbexport: empty redaction prefix would redact every setting")
		}
	}
	return r
}

// Redacts reports whether obj, a member of collection coll, must be left out
// of the export. Only String keys are matched; prefixes compare ordinally.
func (r Redaction) Redacts(coll string, obj *Object) bool {
	r = r.resolved()
	if len(r.Prefixes) == 0 || coll != r.Collection {
		return false
	}
	v, found := obj.Get(r.KeyField)
	if !found {
		return false
	}
	key, ok := v.(String)
	if !ok {
		return false
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(string(key), p) {
			return true
		}
	}
	return false
}
