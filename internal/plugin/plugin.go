// Package plugin defines the common contract shared by generators, readers,
// filters and writers, plus helpers for parsing their command-line options.
// Every plugin declares its options on a pflag.FlagSet and is configured from
// a tokenized command line.
package plugin

import (
	"bytes"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
)

// Plugin is the contract every pipeline plugin implements.
// Name is the registry key; Description feeds help output; DefineFlags
// declares the plugin's options; ParseArgs configures the plugin from a
// tokenized command line (typically by delegating to Parse and then
// validating).
type Plugin interface {
	// Name returns the registry name of the plugin, e.g. "list-files".
	Name() string

	// Description returns a one-line help description.
	Description() string

	// DefineFlags declares the plugin's options on the given flag set.
	DefineFlags(fs *pflag.FlagSet)

	// ParseArgs configures the plugin from tokenized command-line options.
	ParseArgs(args []string) error
}

// Base provides the Name/Description half of the Plugin contract.
// Concrete plugins embed Base and add DefineFlags/ParseArgs.
type Base struct {
	name        string
	description string
}

// NewBase creates a plugin base with the given name and description.
func NewBase(name, description string) Base {
	return Base{name: name, description: description}
}

// Name returns the registry name of the plugin.
func (b Base) Name() string { return b.name }

// Description returns the one-line help description.
func (b Base) Description() string { return b.description }

// Parse parses args against the plugin's declared flags.
// Leftover positional arguments are rejected; parse failures are reported as
// configuration errors naming the plugin.
func Parse(p Plugin, args []string) error {
	fs := newFlagSet(p)

	if err := fs.Parse(args); err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("plugin %q: %v", p.Name(), err), err)
	}

	if fs.NArg() > 0 {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("plugin %q: unexpected argument %q", p.Name(), fs.Arg(0)), nil)
	}

	return nil
}

// Usage returns the formatted option help for a plugin, for listings.
// Plugins without options yield an empty string.
func Usage(p Plugin) string {
	fs := newFlagSet(p)
	return fs.FlagUsages()
}

// newFlagSet builds the plugin's flag set with errors handed back to the
// caller instead of exiting the process.
func newFlagSet(p Plugin) *pflag.FlagSet {
	fs := pflag.NewFlagSet(p.Name(), pflag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	fs.Usage = func() {}
	p.DefineFlags(fs)
	return fs
}
