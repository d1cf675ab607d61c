package filter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/template"
)

// LogData writes a formatted trace line for every passing record, to
// stdout or to --output. The format knows {DATE}, {TIME}, {TS}, {NAME},
// {SOURCE} and {META.key} tokens plus session placeholders. Records are
// forwarded unchanged.
type LogData struct {
	plugin.Base
	format string
	output string

	sess *session.Session
	out  io.Writer
	file *os.File
}

// NewLogData creates a log-data filter.
func NewLogData() Filter {
	return &LogData{
		Base: plugin.NewBase("log-data",
			"Writes a formatted trace line per passing record."),
		format: "{DATE} {TIME} {NAME}",
	}
}

// DefineFlags declares the filter's options.
func (f *LogData) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.format, "format", f.format,
		"Trace template; {DATE}, {TIME}, {TS}, {NAME}, {SOURCE}, {META.key} and placeholders are expanded.")
	fs.StringVar(&f.output, "output", "", "File to append the trace to; stdout when empty.")
}

// ParseArgs configures the filter from command-line options.
func (f *LogData) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if err := template.ValidateSyntax(f.format); err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("log-data filter: invalid --format %q", f.format), err)
	}
	return nil
}

// Init opens the trace destination.
func (f *LogData) Init(sess *session.Session) error {
	f.sess = sess
	if f.output == "" {
		f.out = os.Stdout
		return nil
	}
	path, err := sess.Resolve(f.output)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errhandling.NewIOError(
			fmt.Sprintf("log-data filter: cannot open %s", path), err)
	}
	f.file = file
	f.out = file
	return nil
}

// Process writes the trace line and forwards the record.
func (f *LogData) Process(rec record.Record) ([]record.Record, error) {
	now := time.Now()
	line, err := template.Resolve(f.format, func(token string) (string, bool) {
		switch token {
		case "DATE":
			return now.Format("2006-01-02"), true
		case "TIME":
			return now.Format("15:04:05"), true
		case "TS":
			return strconv.FormatInt(now.Unix(), 10), true
		case "NAME":
			name, _ := record.NameOf(rec)
			return name, true
		case "SOURCE":
			source, _ := record.SourceOf(rec)
			return source, true
		}
		if key, found := strings.CutPrefix(token, "META."); found {
			value, ok := record.MetaValue(rec, key)
			if !ok {
				return "", true
			}
			return template.ValueToString(value), true
		}
		value, err := f.sess.GetPlaceholder(token)
		return value, err == nil
	})
	if err != nil {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("log-data filter: cannot resolve trace for %s", record.Describe(rec)), err)
	}
	if _, err := fmt.Fprintln(f.out, line); err != nil {
		return nil, errhandling.NewIOError("log-data filter: write failed", err)
	}
	return []record.Record{rec}, nil
}

// Close closes the trace file when one is open.
func (f *LogData) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

var _ Filter = (*LogData)(nil)
