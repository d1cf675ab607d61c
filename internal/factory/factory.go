// Package factory builds plugin instances from command-line specs.
//
// # Plugin Creation
//
// A spec is a shell-style command line: the first token names the plugin,
// the remaining tokens are its options ("list-files --dir {IN}"). The
// factory looks the name up in the registry, applies the options via
// ParseArgs and returns the configured instance. Unknown names resolve to
// a PluginNotFoundError.
//
// # Nested Sub-Pipelines
//
// The factory installs filter.SubchainBuilder at init time, so meta-filters
// like trigger and tee can host nested filter chains plus an optional
// writer without the filter package importing the registry. Nesting depth
// is bounded by filter.MaxNestingDepth.
//
// # Adding New Plugin Types
//
// To add a new plugin, see the documentation in internal/registry. You do
// NOT need to modify this factory; just register your constructor.
package factory

import (
	"fmt"

	"github.com/waikato-datamining/kasperl/internal/cmdline"
	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/filter"
	"github.com/waikato-datamining/kasperl/internal/generator"
	"github.com/waikato-datamining/kasperl/internal/reader"
	"github.com/waikato-datamining/kasperl/internal/registry"
	"github.com/waikato-datamining/kasperl/internal/writer"
)

func init() {
	// Installed here so nested sub-pipelines resolve through the registry
	// without an import cycle between filter and registry.
	filter.SubchainBuilder = buildSubchain
}

// splitSpec tokenizes a plugin spec into name and options.
func splitSpec(kind, spec string) (string, []string, error) {
	tokens, err := cmdline.Split(spec)
	if err != nil {
		return "", nil, errhandling.NewConfigurationError(
			fmt.Sprintf("malformed %s spec %q", kind, spec), err)
	}
	if len(tokens) == 0 {
		return "", nil, errhandling.NewConfigurationError(
			fmt.Sprintf("empty %s spec", kind), nil)
	}
	return tokens[0], tokens[1:], nil
}

// BuildGenerator builds a configured generator from a command-line spec.
func BuildGenerator(spec string) (generator.Generator, error) {
	name, args, err := splitSpec("generator", spec)
	if err != nil {
		return nil, err
	}
	constructor := registry.GetGeneratorConstructor(name)
	if constructor == nil {
		return nil, errhandling.NewPluginNotFoundError("generator", name)
	}
	g := constructor()
	if err := g.ParseArgs(args); err != nil {
		return nil, err
	}
	return g, nil
}

// BuildReader builds a configured reader from a command-line spec.
func BuildReader(spec string) (reader.Reader, error) {
	name, args, err := splitSpec("reader", spec)
	if err != nil {
		return nil, err
	}
	constructor := registry.GetReaderConstructor(name)
	if constructor == nil {
		return nil, errhandling.NewPluginNotFoundError("reader", name)
	}
	r := constructor()
	if err := r.ParseArgs(args); err != nil {
		return nil, err
	}
	return r, nil
}

// BuildFilter builds a configured top-level filter from a command-line spec.
func BuildFilter(spec string) (filter.Filter, error) {
	return buildFilterAtDepth(spec, 0)
}

// buildFilterAtDepth builds a filter at the given nesting depth.
func buildFilterAtDepth(spec string, depth int) (filter.Filter, error) {
	name, args, err := splitSpec("filter", spec)
	if err != nil {
		return nil, err
	}
	constructor := registry.GetFilterConstructor(name)
	if constructor == nil {
		return nil, errhandling.NewPluginNotFoundError("filter", name)
	}
	f := constructor()
	if nester, ok := f.(filter.NestingAware); ok {
		nester.SetNestingDepth(depth)
	}
	if err := f.ParseArgs(args); err != nil {
		return nil, err
	}
	return f, nil
}

// BuildWriter builds a configured writer from a command-line spec.
func BuildWriter(spec string) (writer.Writer, error) {
	name, args, err := splitSpec("writer", spec)
	if err != nil {
		return nil, err
	}
	constructor := registry.GetWriterConstructor(name)
	if constructor == nil {
		return nil, errhandling.NewPluginNotFoundError("writer", name)
	}
	w := constructor()
	if err := w.ParseArgs(args); err != nil {
		return nil, err
	}
	return w, nil
}

// Pipeline is an assembled processing chain: reader, filters and an
// optional writer, all configured but not yet initialized.
type Pipeline struct {
	Reader  reader.Reader
	Filters []filter.Filter
	Writer  writer.Writer
}

// BuildPipeline assembles a pipeline from command-line specs. The writer
// spec may be empty. A batch-only writer paired with an unbounded reader
// is rejected because the batch can never materialize.
func BuildPipeline(readerSpec string, filterSpecs []string, writerSpec string) (*Pipeline, error) {
	r, err := BuildReader(readerSpec)
	if err != nil {
		return nil, err
	}

	filters := make([]filter.Filter, 0, len(filterSpecs))
	for _, spec := range filterSpecs {
		f, err := BuildFilter(spec)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	var w writer.Writer
	if writerSpec != "" {
		w, err = BuildWriter(writerSpec)
		if err != nil {
			return nil, err
		}
		if err := checkWriterContract(r, w); err != nil {
			return nil, err
		}
	}

	return &Pipeline{Reader: r, Filters: filters, Writer: w}, nil
}

// SplitPipelineLine splits a single "|"-chained command line into reader,
// filter and writer specs. The first stage is the reader; the final stage
// becomes the writer when it names a registered writer; everything in
// between is a filter. The returned specs keep their quoting so placeholder
// and binding substitution can run on them later.
func SplitPipelineLine(line string) (readerSpec string, filterSpecs []string, writerSpec string, err error) {
	stages, err := cmdline.Stages(line)
	if err != nil {
		return "", nil, "", errhandling.NewConfigurationError(
			fmt.Sprintf("malformed pipeline %q", line), err)
	}
	if len(stages) == 0 {
		return "", nil, "", errhandling.NewConfigurationError("empty pipeline", nil)
	}

	readerSpec = cmdline.Join(stages[0])
	rest := stages[1:]
	if len(rest) > 0 {
		last := rest[len(rest)-1]
		if registry.GetWriterConstructor(last[0]) != nil {
			writerSpec = cmdline.Join(last)
			rest = rest[:len(rest)-1]
		}
	}
	for _, stage := range rest {
		filterSpecs = append(filterSpecs, cmdline.Join(stage))
	}
	return readerSpec, filterSpecs, writerSpec, nil
}

// checkWriterContract rejects batch-only writers behind unbounded readers.
func checkWriterContract(r reader.Reader, w writer.Writer) error {
	if !reader.IsUnbounded(r) {
		return nil
	}
	_, isBatch := w.(writer.BatchWriter)
	_, isStream := w.(writer.StreamWriter)
	if isBatch && !isStream {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("writer %q requires the whole record set but reader %q is unbounded",
				w.Name(), r.Name()), nil)
	}
	return nil
}
