package filter

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/logger"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Duplicate handling actions.
const (
	DuplicateIgnore = "ignore"
	DuplicateWarn   = "warn"
	DuplicateDrop   = "drop"
	DuplicateError  = "error"
)

// CheckDuplicateFilenames tracks record names within a pass and handles
// repeats per --action: ignore passes silently, warn logs and passes, drop
// logs and drops so exactly one record per distinct name survives, error
// aborts the run. Records without a name pass untouched.
type CheckDuplicateFilenames struct {
	plugin.Base
	action string

	seen map[string]bool
}

// NewCheckDuplicateFilenames creates a check-duplicate-filenames filter.
func NewCheckDuplicateFilenames() Filter {
	return &CheckDuplicateFilenames{
		Base: plugin.NewBase("check-duplicate-filenames",
			"Detects records with names already seen in this pass."),
		action: DuplicateDrop,
	}
}

// DefineFlags declares the filter's options.
func (f *CheckDuplicateFilenames) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.action, "action", f.action,
		"What to do with duplicates: ignore, warn, drop or error.")
}

// ParseArgs configures the filter from command-line options.
func (f *CheckDuplicateFilenames) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	switch f.action {
	case DuplicateIgnore, DuplicateWarn, DuplicateDrop, DuplicateError:
		return nil
	default:
		return errhandling.NewConfigurationError(
			fmt.Sprintf("check-duplicate-filenames filter: invalid --action %q", f.action), nil)
	}
}

// Init prepares the filter with the shared session.
func (f *CheckDuplicateFilenames) Init(sess *session.Session) error {
	f.seen = make(map[string]bool)
	return nil
}

// Process tracks the record name and applies the duplicate action.
func (f *CheckDuplicateFilenames) Process(rec record.Record) ([]record.Record, error) {
	name, ok := record.NameOf(rec)
	if !ok {
		return []record.Record{rec}, nil
	}
	if !f.seen[name] {
		f.seen[name] = true
		return []record.Record{rec}, nil
	}

	switch f.action {
	case DuplicateIgnore:
		return []record.Record{rec}, nil
	case DuplicateWarn:
		logger.Warn("duplicate record name", "name", name)
		return []record.Record{rec}, nil
	case DuplicateDrop:
		logger.Warn("dropping duplicate record name", "name", name)
		return nil, nil
	default:
		return nil, errhandling.NewDuplicateRecordError(name)
	}
}

// Reset clears the seen names for the next binding.
func (f *CheckDuplicateFilenames) Reset() { f.seen = make(map[string]bool) }

// Close releases resources; check-duplicate-filenames holds none.
func (f *CheckDuplicateFilenames) Close() error { return nil }

var (
	_ Filter   = (*CheckDuplicateFilenames)(nil)
	_ Resetter = (*CheckDuplicateFilenames)(nil)
)
