package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andreyvit/edbexport"
	"github.com/andreyvit/edbexport/store"
	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description of database contents, used to seed stores
// and to export without one. Property kinds use the XML element names:
//
//	collections:
//	  - name: Settings
//	    indices:
//	      - [Key]
//	      - [-Updated, Key]   # leading "-" is descending
//	    objects:
//	      - id: "1"
//	        type: Setting
//	        props:
//	          - {n: Key, t: S, v: ui.theme}
//	          - {n: Tags, t: Array, type: String, items: [{t: S, v: a}]}
//	          - {n: Color, t: En, type: Color, v: Red}
//	          - {n: Blob, t: Bin, v: AQID}   # Base64
type Fixture struct {
	Collections []FixtureCollection `yaml:"collections"`
}

type FixtureCollection struct {
	Name    string          `yaml:"name"`
	Indices [][]string      `yaml:"indices"`
	Objects []FixtureObject `yaml:"objects"`
}

type FixtureObject struct {
	ID    string        `yaml:"id"`
	Type  string        `yaml:"type"`
	Props []FixtureProp `yaml:"props"`
}

type FixtureProp struct {
	Name  string        `yaml:"n"`
	Tag   string        `yaml:"t"`
	Value string        `yaml:"v"`
	Type  string        `yaml:"type"`
	Items []FixtureProp `yaml:"items"`
	Props []FixtureProp `yaml:"props"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %q: %w", path, err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for i, c := range fx.Collections {
		if c.Name == "" {
			return nil, fmt.Errorf("fixture: collection %d has no name", i)
		}
	}
	return &fx, nil
}

// Database converts the fixture into an in-memory database.
func (fx *Fixture) Database() (*edbexport.Database, error) {
	db := &edbexport.Database{}
	for _, fc := range fx.Collections {
		coll := db.Collection(fc.Name)
		for _, fields := range fc.Indices {
			coll.Indices = append(coll.Indices, parseIndex(fields))
		}
		for _, fo := range fc.Objects {
			obj, err := fo.object(fc.Name)
			if err != nil {
				return nil, err
			}
			coll.Add(obj)
		}
	}
	return db, nil
}

// Seed writes the fixture into tx, defining every collection.
func (fx *Fixture) Seed(tx *store.Tx) (int, error) {
	db, err := fx.Database()
	if err != nil {
		return 0, err
	}
	var n int
	for _, coll := range db.Collections {
		if err := tx.DefineCollection(coll.Name, coll.Indices...); err != nil {
			return n, err
		}
		for _, obj := range coll.Objects {
			if err := tx.Put(obj); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func parseIndex(fields []string) edbexport.Index {
	var idx edbexport.Index
	for _, f := range fields {
		if name, ok := strings.CutPrefix(f, "-"); ok {
			idx.Fields = append(idx.Fields, edbexport.Desc(name))
		} else {
			idx.Fields = append(idx.Fields, edbexport.Asc(f))
		}
	}
	return idx
}

func (fo *FixtureObject) object(coll string) (*edbexport.Object, error) {
	obj := edbexport.NewObject(coll, fo.ID, fo.Type)
	for _, fp := range fo.Props {
		v, err := fp.value()
		if err != nil {
			return nil, fmt.Errorf("fixture: %s/%s.%s: %w", coll, fo.ID, fp.Name, err)
		}
		obj.Add(fp.Name, v)
	}
	return obj, nil
}

func (fp *FixtureProp) value() (edbexport.Value, error) {
	s := fp.Value
	switch fp.Tag {
	case "Null", "":
		return edbexport.Null{}, nil
	case "Bl":
		v, err := edbexport.ParseBool(s)
		return edbexport.Bool(v), err
	case "B":
		v, err := edbexport.ParseUint(s, 8)
		return edbexport.Byte(v), err
	case "I1":
		v, err := edbexport.ParseInt(s, 8)
		return edbexport.Int8(v), err
	case "I2":
		v, err := edbexport.ParseInt(s, 16)
		return edbexport.Int16(v), err
	case "I4":
		v, err := edbexport.ParseInt(s, 32)
		return edbexport.Int32(v), err
	case "I8":
		v, err := edbexport.ParseInt(s, 64)
		return edbexport.Int64(v), err
	case "U2":
		v, err := edbexport.ParseUint(s, 16)
		return edbexport.UInt16(v), err
	case "U4":
		v, err := edbexport.ParseUint(s, 32)
		return edbexport.UInt32(v), err
	case "U8":
		v, err := edbexport.ParseUint(s, 64)
		return edbexport.UInt64(v), err
	case "Ch":
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) {
			return nil, fmt.Errorf("need exactly one character, got %q", s)
		}
		return edbexport.Char(r), nil
	case "Fl":
		v, err := edbexport.ParseFloat(s, 32)
		return edbexport.Float32(v), err
	case "Db":
		v, err := edbexport.ParseFloat(s, 64)
		return edbexport.Float64(v), err
	case "Dc":
		v, err := edbexport.ParseDecimal(s)
		return v, err
	case "DT":
		v, err := edbexport.ParseDateTime(s, time.Local)
		return edbexport.DateTime{Time: v}, err
	case "DTO":
		v, err := edbexport.ParseDateTimeOffset(s)
		return edbexport.DateTimeOffset{Time: v}, err
	case "TS":
		v, err := edbexport.ParseTimeSpan(s)
		return edbexport.TimeSpan(v), err
	case "ID":
		v, err := edbexport.ParseGUID(s)
		return edbexport.GUID(v), err
	case "S":
		return edbexport.String(s), nil
	case "CIS":
		return edbexport.CIString(s), nil
	case "S64", "CIS64":
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, err
		}
		if fp.Tag == "S64" {
			return edbexport.String(raw), nil
		}
		return edbexport.CIString(raw), nil
	case "Bin":
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, err
		}
		return edbexport.Binary(raw), nil
	case "En":
		return edbexport.Enum{Type: fp.Type, Name: s}, nil
	case "Array":
		arr := edbexport.Array{ElementType: fp.Type}
		for i, item := range fp.Items {
			v, err := item.value()
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil
	case "Obj":
		obj := &edbexport.Object{TypeName: fp.Type}
		for _, sub := range fp.Props {
			v, err := sub.value()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sub.Name, err)
			}
			obj.Add(sub.Name, v)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", fp.Tag)
	}
}
