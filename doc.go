/*
Package edbexport exports a database of dynamically typed objects to a
self-describing XML document suitable for backups, diagnostics and migration.

A traversal driver (Walk for an in-memory Database, or store.DB.Export for a
Bolt-backed store) calls a Sink in protocol order; Exporter is the Sink that
writes XML.

# Wire Format

	<Database>
	  <Collection name="Settings">
	    <Index><Index field="Key" asc="true"/></Index>
	    <Obj id="..." type="...">
	      <S n="Key" v="ui.theme"/>
	    </Obj>
	  </Collection>
	</Database>

**Values.** Every property is one element whose name encodes the value kind,
with the property name in n (omitted for array elements) and the canonical
text in v:

	Null  null             Bl   boolean         B    uint8
	I1    int8             I2   int16           I4   int32
	I8    int64            U2   uint16          U4   uint32
	U8    uint64           Ch   character       Fl   float32
	Db    float64          Dc   decimal         DT   date-time
	DTO   date-time+offset TS   time span       ID   GUID
	S     string           CIS  case-insensitive string
	En    enum member name

Strings containing characters that XML cannot carry are written as S64 or
CIS64 with the Base64 of their UTF-8 bytes. Arrays are Array elements with an
elementType attribute; embedded objects are Obj elements with a type
attribute.

Names, ids, type names and messages follow the same rule: an attribute or
text element whose value XML cannot carry is written under its name with a
64 suffix (id64, n64, message64, Error64) holding the Base64 of the UTF-8
bytes.

**Binary.** Bin elements hold up to 1024 bytes inline in v. Larger blobs
within BinaryDataSizeLimit are split into Chunk children of at most 49152
bytes each. Blobs over the limit carry only their size, in bytes.

**Errors.** Error elements hold a message. Exception elements hold a message
attribute, a StackTrace child and one nested Exception per cause.

**Redaction.** Objects of the Settings collection whose Key starts with one
of the configured prefixes are left out entirely.
*/
package edbexport
