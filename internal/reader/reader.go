// Package reader provides record sources for the pipeline. A reader produces
// one finite pass of records in chunks; the executor calls Read until
// HasFinished reports true. Readers are created fresh per generator binding.
package reader

import (
	"context"

	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Reader is the contract for record sources.
type Reader interface {
	plugin.Plugin

	// Init prepares the reader with the shared session.
	Init(sess *session.Session) error

	// Read returns the next chunk of the pass. An empty chunk with a nil
	// error is permitted; the executor keeps calling until HasFinished.
	Read(ctx context.Context) ([]record.Record, error)

	// HasFinished reports whether the pass is complete.
	HasFinished() bool

	// Close releases any resources held by the reader.
	Close() error
}

// Unbounded is implemented by readers that may never finish, such as a
// polling reader configured for unlimited passes. The executor refuses to
// pair an unbounded reader with a batch writer.
type Unbounded interface {
	Unbounded() bool
}

// IsUnbounded reports whether the reader declares itself unbounded.
func IsUnbounded(r Reader) bool {
	if u, ok := r.(Unbounded); ok {
		return u.Unbounded()
	}
	return false
}
