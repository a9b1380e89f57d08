package store

import (
	"slices"
	"time"

	"github.com/andreyvit/edbexport"
	"github.com/vmihailenco/msgpack/v5"
)

// Each collection is a root bucket holding the msgpack-encoded
// collectionState under stateKey and the records in the data sub-bucket,
// keyed by object id.
const dataBucket = "data"

var stateKey = []byte("_state")

type collectionState struct {
	Indices         []indexDecl `msgpack:"i"`
	Created         time.Time   `msgpack:"c"`
	LastWrite       time.Time   `msgpack:"t"`
	DeletionCounter int         `msgpack:"delcnt,omitempty"`
}

type indexDecl struct {
	Fields []indexFieldDecl `msgpack:"f"`
}

type indexFieldDecl struct {
	Name string `msgpack:"n"`
	Asc  bool   `msgpack:"a"`
}

func indexDeclsOf(indices []edbexport.Index) []indexDecl {
	decls := make([]indexDecl, len(indices))
	for i, idx := range indices {
		fields := make([]indexFieldDecl, len(idx.Fields))
		for j, f := range idx.Fields {
			fields[j] = indexFieldDecl{f.Name, f.Ascending}
		}
		decls[i] = indexDecl{fields}
	}
	return decls
}

func (cs *collectionState) indices() []edbexport.Index {
	result := make([]edbexport.Index, len(cs.Indices))
	for i, d := range cs.Indices {
		fields := make([]edbexport.IndexField, len(d.Fields))
		for j, f := range d.Fields {
			fields[j] = edbexport.IndexField{Name: f.Name, Ascending: f.Asc}
		}
		result[i] = edbexport.Index{Fields: fields}
	}
	return result
}

// DefineCollection creates the named collection if needed and replaces its
// index declarations. Declarations are metadata only; the store never
// maintains index entries.
func (tx *Tx) DefineCollection(name string, indices ...edbexport.Index) error {
	cs, err := tx.prepareCollection(name)
	if err != nil {
		return err
	}
	for _, idx := range indices {
		if len(idx.Fields) == 0 {
			return collErrf(name, nil, nil, "index without fields")
		}
	}
	if equalIndices(cs.indices(), indices) {
		return nil
	}
	cs.Indices = indexDeclsOf(indices)
	return tx.saveState(name, cs)
}

// DropCollection deletes the collection with all its records. It reports
// false if there was no such collection.
func (tx *Tx) DropCollection(name string) (bool, error) {
	err := tx.stx.DeleteBucket(name)
	if err == ErrBucketNotFound {
		return false, nil
	} else if err != nil {
		return false, collErrf(name, nil, err, "drop")
	}
	tx.markWritten()
	tx.db.debugf("db: DROP", name, "")
	return true, nil
}

// Collections returns collection names in byte order.
func (tx *Tx) Collections() []string {
	return tx.stx.Roots()
}

func (tx *Tx) HasCollection(name string) bool {
	return tx.stx.Bucket(name, "") != nil
}

// Indices returns the declared indices of the named collection.
func (tx *Tx) Indices(name string) ([]edbexport.Index, error) {
	cs, err := tx.loadState(name)
	if err != nil {
		return nil, err
	}
	return cs.indices(), nil
}

func (tx *Tx) prepareCollection(name string) (*collectionState, error) {
	if name == "" {
		return nil, collErrf(name, nil, nil, "empty collection name")
	}
	if _, err := tx.stx.CreateBucket(name, dataBucket); err != nil {
		return nil, collErrf(name, nil, err, "create")
	}
	cs, err := tx.loadState(name)
	if err != nil {
		return nil, err
	}
	if cs.Created.IsZero() {
		cs.Created = tx.now()
		if err := tx.saveState(name, cs); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

func (tx *Tx) loadState(name string) (*collectionState, error) {
	root := tx.stx.Bucket(name, "")
	if root == nil {
		return nil, collErrf(name, nil, nil, "no such collection")
	}
	cs := new(collectionState)
	if raw := root.Get(stateKey); raw != nil {
		if err := msgpack.Unmarshal(raw, cs); err != nil {
			return nil, collErrf(name, nil, dataErrf(raw, 0, err, "invalid collection state"), "")
		}
	}
	return cs, nil
}

func (tx *Tx) saveState(name string, cs *collectionState) error {
	root := tx.stx.Bucket(name, "")
	if root == nil {
		return collErrf(name, nil, nil, "no such collection")
	}
	cs.LastWrite = tx.now()
	raw, err := msgpack.Marshal(cs)
	if err != nil {
		return collErrf(name, nil, err, "encode state")
	}
	if err := root.Put(stateKey, raw); err != nil {
		return collErrf(name, nil, err, "save state")
	}
	tx.markWritten()
	return nil
}

func equalIndices(a, b []edbexport.Index) bool {
	return slices.EqualFunc(a, b, func(x, y edbexport.Index) bool {
		return slices.Equal(x.Fields, y.Fields)
	})
}
