package filter

import (
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja"
	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// maxScriptLength caps script size at 100KB.
const maxScriptLength = 100 * 1024

// Script rewrites records with a user-supplied JavaScript transform(record)
// function, executed in a sandboxed goja runtime. The function receives an
// object with name, source, metadata and value properties and returns the
// rewritten object, a plain string for a text record, or null to drop the
// record.
//
// The goja runtime is not goroutine-safe; each filter instance owns one
// runtime and Process must not be called concurrently.
type Script struct {
	plugin.Base
	script     string
	scriptFile string

	runtime     *goja.Runtime
	transformFn goja.Callable
}

// NewScript creates a script filter.
func NewScript() Filter {
	return &Script{
		Base: plugin.NewBase("script",
			"Rewrites records with a JavaScript transform function."),
	}
}

// DefineFlags declares the filter's options.
func (f *Script) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.script, "script", "", "Inline JavaScript defining transform(record).")
	fs.StringVar(&f.scriptFile, "script-file", "", "File with JavaScript defining transform(record).")
}

// ParseArgs configures the filter and compiles the script.
func (f *Script) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}

	source, err := f.scriptSource()
	if err != nil {
		return err
	}

	f.runtime = goja.New()
	if _, err := f.runtime.RunString(source); err != nil {
		return errhandling.NewConfigurationError("script filter: compilation failed", err)
	}

	transformVal := f.runtime.Get("transform")
	if transformVal == nil || goja.IsUndefined(transformVal) {
		return errhandling.NewConfigurationError(
			"script filter: transform function not found in script", nil)
	}
	transformFn, ok := goja.AssertFunction(transformVal)
	if !ok {
		return errhandling.NewConfigurationError(
			"script filter: transform is not a function", nil)
	}
	f.transformFn = transformFn
	return nil
}

// scriptSource returns the validated script text, inline or from file.
func (f *Script) scriptSource() (string, error) {
	if f.script != "" && f.scriptFile != "" {
		return "", errhandling.NewConfigurationError(
			"script filter: --script and --script-file are mutually exclusive", nil)
	}

	source := f.script
	if f.scriptFile != "" {
		info, err := os.Stat(f.scriptFile)
		if err != nil {
			return "", errhandling.NewIOError(
				fmt.Sprintf("script filter: cannot stat %s", f.scriptFile), err)
		}
		if info.Size() > maxScriptLength {
			return "", errhandling.NewConfigurationError(
				fmt.Sprintf("script filter: %s exceeds %d bytes", f.scriptFile, maxScriptLength), nil)
		}
		data, err := os.ReadFile(f.scriptFile)
		if err != nil {
			return "", errhandling.NewIOError(
				fmt.Sprintf("script filter: cannot read %s", f.scriptFile), err)
		}
		source = string(data)
	}

	if strings.TrimSpace(source) == "" {
		return "", errhandling.NewConfigurationError(
			"script filter: --script or --script-file required", nil)
	}
	if len(source) > maxScriptLength {
		return "", errhandling.NewConfigurationError(
			fmt.Sprintf("script filter: script exceeds %d bytes", maxScriptLength), nil)
	}
	return source, nil
}

// Init prepares the filter with the shared session.
func (f *Script) Init(sess *session.Session) error { return nil }

// Process passes the record through the transform function.
func (f *Script) Process(rec record.Record) ([]record.Record, error) {
	jsRecord := f.runtime.ToValue(f.toScriptObject(rec))
	result, err := f.transformFn(goja.Undefined(), jsRecord)
	if err != nil {
		return nil, errhandling.NewProcessError(f.Name(), record.Describe(rec), err)
	}

	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}

	exported := result.Export()
	switch v := exported.(type) {
	case string:
		return []record.Record{v}, nil
	case map[string]interface{}:
		f.applyScriptObject(rec, v)
		return []record.Record{rec}, nil
	default:
		return nil, errhandling.NewProcessError(f.Name(), record.Describe(rec),
			fmt.Errorf("transform returned unsupported type %T", exported))
	}
}

// toScriptObject exposes the record to JavaScript.
func (f *Script) toScriptObject(rec record.Record) map[string]interface{} {
	obj := map[string]interface{}{}
	if name, ok := record.NameOf(rec); ok {
		obj["name"] = name
	}
	if source, ok := record.SourceOf(rec); ok {
		obj["source"] = source
	}
	if meta, ok := record.MetaDataOf(rec); ok {
		obj["metadata"] = meta
	} else {
		obj["metadata"] = map[string]interface{}{}
	}
	if value, ok := rec.(string); ok {
		obj["value"] = value
	}
	return obj
}

// applyScriptObject writes the transformed fields back onto the record.
func (f *Script) applyScriptObject(rec record.Record, obj map[string]interface{}) {
	if name, ok := obj["name"].(string); ok {
		if namer, capable := rec.(record.NameSupporter); capable {
			namer.SetName(name)
		}
	}
	if source, ok := obj["source"].(string); ok {
		if sourcer, capable := rec.(record.SourceSupporter); capable {
			sourcer.SetSource(source)
		}
	}
	if meta, ok := obj["metadata"].(map[string]interface{}); ok {
		if handler, capable := rec.(record.MetaDataHandler); capable {
			handler.SetMetaData(meta)
		}
	}
}

// Close releases the goja runtime.
func (f *Script) Close() error {
	f.runtime = nil
	f.transformFn = nil
	return nil
}

var _ Filter = (*Script)(nil)
