// Package session provides the run-scoped shared context passed by reference
// into every plugin of a pipeline run.
//
// Exactly one Session exists per run. It carries the placeholder map used for
// {name} substitution in plugin configuration strings, a named object store
// shared across stages, and the annotations-only flag read by readers and
// writers. Execution is single-threaded, so no locking is performed; the
// Session is not safe for concurrent use.
package session

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/template"
)

// Well-known placeholders seeded into every new session.
const (
	PlaceholderHome = "HOME"
	PlaceholderCWD  = "CWD"
	PlaceholderTmp  = "TMP"
)

// Session is the shared mutable context for one pipeline run. Mutations
// (placeholder set, annotations-only toggle, storage writes) are visible to
// all subsequently executed stages, including nested sub-pipelines.
type Session struct {
	id              string
	placeholders    map[string]string
	storage         map[string]interface{}
	annotationsOnly bool
	workDir         string
}

// New creates a session with a fresh run ID and the HOME, CWD and TMP
// placeholders seeded from the environment.
func New() *Session {
	s := &Session{
		id:           uuid.NewString(),
		placeholders: make(map[string]string),
		storage:      make(map[string]interface{}),
	}

	if home, err := os.UserHomeDir(); err == nil {
		s.placeholders[PlaceholderHome] = home
	}
	if cwd, err := os.Getwd(); err == nil {
		s.placeholders[PlaceholderCWD] = cwd
		s.workDir = cwd
	}
	s.placeholders[PlaceholderTmp] = os.TempDir()

	return s
}

// ID returns the unique run identifier.
func (s *Session) ID() string {
	return s.id
}

// GetPlaceholder returns the value bound to name. An unset placeholder is an
// error, never an empty string.
func (s *Session) GetPlaceholder(name string) (string, error) {
	value, ok := s.placeholders[name]
	if !ok {
		return "", fmt.Errorf("placeholder %q is not set", name)
	}
	return value, nil
}

// SetPlaceholder binds name to value, overwriting any previous binding.
func (s *Session) SetPlaceholder(name, value string) {
	s.placeholders[name] = value
}

// HasPlaceholder reports whether name is currently bound.
func (s *Session) HasPlaceholder(name string) bool {
	_, ok := s.placeholders[name]
	return ok
}

// Placeholders returns a copy of the current placeholder map.
func (s *Session) Placeholders() map[string]string {
	out := make(map[string]string, len(s.placeholders))
	for k, v := range s.placeholders {
		out[k] = v
	}
	return out
}

// Resolve substitutes every {name} token in tmpl using the current
// placeholder map. An unresolved token aborts resolution with an error; it is
// a configuration error, not a silent empty-string substitution.
func (s *Session) Resolve(tmpl string) (string, error) {
	return template.Resolve(tmpl, func(name string) (string, bool) {
		value, ok := s.placeholders[name]
		return value, ok
	})
}

// CloneRecord produces a fully independent deep copy of rec. The clone shares
// no mutable substructure with the original and is the only safe way for a
// filter to branch a record (e.g. tee) without aliasing.
func (s *Session) CloneRecord(rec record.Record) (record.Record, error) {
	return record.Clone(rec)
}

// AnnotationsOnly reports whether readers and writers that support it must
// restrict themselves to records carrying annotations.
func (s *Session) AnnotationsOnly() bool {
	return s.annotationsOnly
}

// SetAnnotationsOnly toggles the annotations-only flag for the run.
func (s *Session) SetAnnotationsOnly(enabled bool) {
	s.annotationsOnly = enabled
}

// Storage returns the named object store shared across stages. The map itself
// is shared; storage plugins read and write it directly.
func (s *Session) Storage() map[string]interface{} {
	return s.storage
}

// WorkDir returns the session's working directory.
func (s *Session) WorkDir() string {
	return s.workDir
}

// SetWorkDir updates the session's working directory.
func (s *Session) SetWorkDir(dir string) {
	s.workDir = dir
}
