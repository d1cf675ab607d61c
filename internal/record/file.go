// Package record defines the unit of work flowing through a pipeline and the
// optional capabilities a record type may implement.
// This file implements FileRecord, the file-backed record produced by the
// filesystem readers.
package record

import (
	"path/filepath"
)

// FileRecord is a record backed by a file on disk. It implements every
// capability: name (the base name, mutable), source (the path the file was
// discovered at), metadata and annotations.
type FileRecord struct {
	name        string
	source      string
	metadata    map[string]interface{}
	annotations interface{}
}

// NewFileRecord creates a record for the file at source. The logical name
// defaults to the file's base name.
func NewFileRecord(source string) *FileRecord {
	return &FileRecord{
		name:   filepath.Base(source),
		source: source,
	}
}

// Name returns the record's logical name.
func (r *FileRecord) Name() string { return r.name }

// SetName updates the record's logical name.
func (r *FileRecord) SetName(name string) { r.name = name }

// Source returns the path the record was read from.
func (r *FileRecord) Source() string { return r.source }

// SetSource updates the record's origin path, used by relocating filters.
func (r *FileRecord) SetSource(source string) { r.source = source }

// HasMetaData reports whether any metadata has been attached.
func (r *FileRecord) HasMetaData() bool { return len(r.metadata) > 0 }

// MetaData returns the metadata map, which may be nil.
func (r *FileRecord) MetaData() map[string]interface{} { return r.metadata }

// SetMetaData replaces the metadata map.
func (r *FileRecord) SetMetaData(meta map[string]interface{}) { r.metadata = meta }

// HasAnnotations reports whether the record carries a non-empty annotation
// set. Empty slices and maps count as absent.
func (r *FileRecord) HasAnnotations() bool {
	switch v := r.annotations.(type) {
	case nil:
		return false
	case []interface{}:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// Annotations returns the annotation payload, which may be nil.
func (r *FileRecord) Annotations() interface{} { return r.annotations }

// SetAnnotations replaces the annotation payload.
func (r *FileRecord) SetAnnotations(annotations interface{}) { r.annotations = annotations }

// CloneRecord returns a deep copy sharing no mutable substructure with the
// receiver.
func (r *FileRecord) CloneRecord() Record {
	return &FileRecord{
		name:        r.name,
		source:      r.source,
		metadata:    deepCopyMap(r.metadata),
		annotations: deepCopyValue(r.annotations),
	}
}

// Compile-time capability checks.
var (
	_ NameSupporter     = (*FileRecord)(nil)
	_ SourceSupporter   = (*FileRecord)(nil)
	_ MetaDataHandler   = (*FileRecord)(nil)
	_ AnnotationHandler = (*FileRecord)(nil)
	_ Cloner            = (*FileRecord)(nil)
)
