// Package record defines the unit of work flowing through a pipeline and the
// optional capabilities a record type may implement.
//
// A record is opaque to the engine: the minimal guaranteed shape is nothing.
// Components that need a name, a source path, annotations or metadata query
// the corresponding capability interface by type assertion and must cope with
// records that do not implement it. Plain strings are valid records carrying
// no capabilities at all.
package record

import (
	"fmt"
)

// Record is the opaque unit of work. Any value is a record.
type Record interface{}

// NameSupporter is implemented by records that carry a logical name
// (typically derived from a file name). Names are mutable by filters.
type NameSupporter interface {
	Name() string
	SetName(name string)
}

// SourceSupporter is implemented by records that carry an origin path.
// The source is read-only by convention; only relocating filters update it.
type SourceSupporter interface {
	Source() string
	SetSource(source string)
}

// AnnotationHandler is implemented by records that carry labeled data.
// Annotations are distinct from metadata: they are the payload being
// curated, not routing information.
type AnnotationHandler interface {
	HasAnnotations() bool
	Annotations() interface{}
	SetAnnotations(annotations interface{})
}

// MetaDataHandler is implemented by records that carry a key/value metadata
// map used for filtering and routing decisions.
type MetaDataHandler interface {
	HasMetaData() bool
	MetaData() map[string]interface{}
	SetMetaData(meta map[string]interface{})
}

// Cloner is implemented by records that know how to produce a fully
// independent deep copy of themselves.
type Cloner interface {
	CloneRecord() Record
}

// NameOf returns the record's name when the record supports one.
func NameOf(rec Record) (string, bool) {
	if ns, ok := rec.(NameSupporter); ok {
		return ns.Name(), true
	}
	return "", false
}

// SourceOf returns the record's source path when the record supports one.
func SourceOf(rec Record) (string, bool) {
	if ss, ok := rec.(SourceSupporter); ok {
		return ss.Source(), true
	}
	return "", false
}

// MetaDataOf returns the record's metadata map when the record supports one.
// The map may be nil when no metadata has been attached yet.
func MetaDataOf(rec Record) (map[string]interface{}, bool) {
	if mh, ok := rec.(MetaDataHandler); ok {
		return mh.MetaData(), true
	}
	return nil, false
}

// MetaValue returns the metadata value for key. The boolean is false when the
// record carries no metadata capability or the key is absent.
func MetaValue(rec Record, key string) (interface{}, bool) {
	meta, ok := MetaDataOf(rec)
	if !ok || meta == nil {
		return nil, false
	}
	v, ok := meta[key]
	return v, ok
}

// SetMetaValue stores key=value in the record's metadata, allocating the map
// if needed. Returns false when the record has no metadata capability.
func SetMetaValue(rec Record, key string, value interface{}) bool {
	mh, ok := rec.(MetaDataHandler)
	if !ok {
		return false
	}
	meta := mh.MetaData()
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta[key] = value
	mh.SetMetaData(meta)
	return true
}

// HasAnnotations reports whether the record carries a non-empty annotation
// set. capable is false when the record has no annotation capability at all.
func HasAnnotations(rec Record) (has, capable bool) {
	ah, ok := rec.(AnnotationHandler)
	if !ok {
		return false, false
	}
	return ah.HasAnnotations(), true
}

// Describe renders a short identity for diagnostics: the name when the
// record has one, the source as a fallback, a truncated literal for strings,
// or the dynamic type for everything else.
func Describe(rec Record) string {
	if name, ok := NameOf(rec); ok && name != "" {
		return name
	}
	if source, ok := SourceOf(rec); ok && source != "" {
		return source
	}
	if s, ok := rec.(string); ok {
		const max = 40
		if len(s) > max {
			return fmt.Sprintf("%q...", s[:max])
		}
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%T", rec)
}
