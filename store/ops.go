package store

import (
	"log/slog"

	"github.com/andreyvit/edbexport"
	"github.com/google/uuid"
)

// Put stores obj in obj.Collection, creating the collection on first use. An
// object without an ID is assigned a new random GUID.
func (tx *Tx) Put(obj *edbexport.Object) error {
	tx.checkWritable()
	if obj.ID == "" {
		obj.ID = uuid.NewString()
	}
	if _, err := tx.prepareCollection(obj.Collection); err != nil {
		return err
	}
	key := []byte(obj.ID)

	data, err := encodeObject(obj)
	if err != nil {
		return collErrf(obj.Collection, key, err, "encode")
	}

	buck := tx.stx.Bucket(obj.Collection, dataBucket)
	var modCount uint64
	if raw := buck.Get(key); raw != nil {
		var old record
		if old.decode(raw) == nil {
			modCount = old.ModCount
		}
	}
	modCount++

	if err := buck.Put(key, appendRecord(nil, modCount, data)); err != nil {
		return collErrf(obj.Collection, key, err, "put")
	}
	tx.markWritten()
	tx.db.debugf("db: PUT", obj.Collection, obj.ID, slog.Uint64("m", modCount), slog.Int("size", len(data)))
	return nil
}

// PutRaw stores raw bytes as the record for id, bypassing encoding. It exists
// to restore dumps and to simulate damaged records.
func (tx *Tx) PutRaw(coll, id string, raw []byte) error {
	tx.checkWritable()
	if _, err := tx.prepareCollection(coll); err != nil {
		return err
	}
	if err := tx.stx.Bucket(coll, dataBucket).Put([]byte(id), raw); err != nil {
		return collErrf(coll, []byte(id), err, "put")
	}
	tx.markWritten()
	tx.db.debugf("db: PUT_RAW", coll, id, slog.Int("size", len(raw)))
	return nil
}

// Get returns the object stored under id, or nil if there is none.
func (tx *Tx) Get(coll, id string) (*edbexport.Object, error) {
	buck := tx.stx.Bucket(coll, dataBucket)
	if buck == nil {
		return nil, nil
	}
	raw := buck.Get([]byte(id))
	if raw == nil {
		tx.db.debugf("db: GET.NOTFOUND", coll, id)
		return nil, nil
	}
	obj, _, err := decodeRecord(coll, []byte(id), raw)
	if err != nil {
		return nil, err
	}
	tx.db.debugf("db: GET", coll, id)
	return obj, nil
}

// GetModCount returns how many times id has been written, or 0 if absent.
func (tx *Tx) GetModCount(coll, id string) (uint64, error) {
	buck := tx.stx.Bucket(coll, dataBucket)
	if buck == nil {
		return 0, nil
	}
	raw := buck.Get([]byte(id))
	if raw == nil {
		return 0, nil
	}
	var rec record
	if err := rec.decode(raw); err != nil {
		return 0, collErrf(coll, []byte(id), err, "")
	}
	return rec.ModCount, nil
}

// Delete removes id from coll, reporting whether it was there.
func (tx *Tx) Delete(coll, id string) (bool, error) {
	tx.checkWritable()
	buck := tx.stx.Bucket(coll, dataBucket)
	if buck == nil || buck.Get([]byte(id)) == nil {
		tx.db.debugf("db: DELETE.NOOP", coll, id)
		return false, nil
	}
	if err := buck.Delete([]byte(id)); err != nil {
		return false, collErrf(coll, []byte(id), err, "delete")
	}
	cs, err := tx.loadState(coll)
	if err != nil {
		return false, err
	}
	cs.DeletionCounter++
	if err := tx.saveState(coll, cs); err != nil {
		return false, err
	}
	tx.markWritten()
	tx.db.debugf("db: DELETE", coll, id)
	return true, nil
}

// Scan calls f for every record of coll in id order. A record that cannot be
// decoded is passed to f as a nil object with a non-nil *CollectionError so
// that the caller can report it and carry on. Scan stops at the first error
// returned by f and returns it.
func (tx *Tx) Scan(coll string, f func(obj *edbexport.Object, err error) error) error {
	buck := tx.stx.Bucket(coll, dataBucket)
	if buck == nil {
		return nil
	}
	c := buck.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		obj, _, err := decodeRecord(coll, k, v)
		if err := f(obj, err); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records in coll.
func (tx *Tx) Count(coll string) int {
	buck := tx.stx.Bucket(coll, dataBucket)
	if buck == nil {
		return 0
	}
	return buck.Stats().KeyN
}

func decodeRecord(coll string, key, raw []byte) (*edbexport.Object, record, error) {
	var rec record
	if err := rec.decode(raw); err != nil {
		return nil, rec, collErrf(coll, key, err, "")
	}
	obj := &edbexport.Object{ID: string(key), Collection: coll}
	err := edbexport.Safely(func() error {
		return decodeObject(rec.Data, obj)
	})
	if err != nil {
		return nil, rec, collErrf(coll, key, dataErrf(rec.Data, 0, err, "invalid object"), "")
	}
	return obj, rec, nil
}
