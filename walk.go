package edbexport

import (
	"context"
	"fmt"
)

// Database is an in-memory snapshot that Walk can export.
type Database struct {
	Collections []*Collection
}

type Collection struct {
	Name    string
	Indices []Index
	Objects []*Object
}

// Index is a declared sort order.
type Index struct {
	Fields []IndexField
}

type IndexField struct {
	Name      string
	Ascending bool
}

func Asc(name string) IndexField  { return IndexField{name, true} }
func Desc(name string) IndexField { return IndexField{name, false} }

func NewIndex(fields ...IndexField) Index {
	return Index{Fields: fields}
}

func (db *Database) Collection(name string) *Collection {
	for _, c := range db.Collections {
		if c.Name == name {
			return c
		}
	}
	c := &Collection{Name: name}
	db.Collections = append(db.Collections, c)
	return c
}

// Add appends obj, stamping it with the collection name.
func (c *Collection) Add(obj *Object) *Collection {
	obj.Collection = c.Name
	c.Objects = append(c.Objects, obj)
	return c
}

// Walk drives sink over db in protocol order. It checks ctx between objects.
// Errors returned by the sink abort the walk; a sink may return ErrStop to end
// it early.
func Walk(ctx context.Context, db *Database, sink Sink) error {
	if err := sink.BeginExport(); err != nil {
		return err
	}
	for _, c := range db.Collections {
		if !sink.CanExportCollection(c.Name) {
			continue
		}
		if err := sink.BeginCollection(c.Name); err != nil {
			return err
		}
		for _, idx := range c.Indices {
			if err := ExportIndex(sink, idx); err != nil {
				return err
			}
		}
		for _, obj := range c.Objects {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := ExportObject(sink, c.Name, obj); err != nil {
				return err
			}
		}
		if err := sink.EndCollection(); err != nil {
			return err
		}
	}
	return sink.EndExport()
}

// ExportIndex reports one index declaration.
func ExportIndex(sink Sink, idx Index) error {
	if err := sink.BeginIndex(); err != nil {
		return err
	}
	for _, f := range idx.Fields {
		if err := sink.ReportIndexField(f.Name, f.Ascending); err != nil {
			return err
		}
	}
	return sink.EndIndex()
}

// ExportObject reports obj unless the sink redacts it. Property failures are
// wrapped in *ObjectError.
func ExportObject(sink Sink, coll string, obj *Object) error {
	if obj == nil {
		return fmt.Errorf("%s: nil object", coll)
	}
	if !sink.CanExportObject(obj) {
		return nil
	}
	id, err := sink.BeginObject(obj.ID, obj.TypeName)
	if err != nil {
		return err
	}
	for _, p := range obj.Props {
		if err := sink.ReportProperty(p.Name, p.Value); err != nil {
			return objectErrf(coll, id, p.Name, err)
		}
	}
	return sink.EndObject()
}
