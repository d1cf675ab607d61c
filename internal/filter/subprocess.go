package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/cmdline"
	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/logger"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
	"github.com/waikato-datamining/kasperl/internal/template"
)

// SubProcess runs an external command per record. The command template may
// use session placeholders plus {NAME} and {SOURCE}. Exit status decides
// the record's fate: 0 passes it through (with --replace, as a text record
// holding the process stdout), --drop-exit-code drops it, anything else is
// a failure handled per --on-error.
type SubProcess struct {
	plugin.Base
	command      string
	timeout      time.Duration
	replace      bool
	dropExitCode int
	onErrorRaw   string

	sess    *session.Session
	onError errhandling.OnErrorStrategy
}

// NewSubProcess creates a sub-process filter.
func NewSubProcess() Filter {
	return &SubProcess{
		Base: plugin.NewBase("sub-process",
			"Runs an external command per record."),
		timeout:      30 * time.Second,
		dropExitCode: -1,
		onErrorRaw:   string(errhandling.OnErrorFail),
	}
}

// DefineFlags declares the filter's options.
func (f *SubProcess) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.command, "command", "", "Command template; {NAME}, {SOURCE} and placeholders are expanded.")
	fs.DurationVar(&f.timeout, "timeout", f.timeout, "Maximum run time per invocation.")
	fs.BoolVar(&f.replace, "replace", false, "Forward the process stdout as a text record instead of the original.")
	fs.IntVar(&f.dropExitCode, "drop-exit-code", f.dropExitCode, "Exit code that drops the record (-1 disables).")
	fs.StringVar(&f.onErrorRaw, "on-error", f.onErrorRaw, "Failure handling: fail, skip or log.")
}

// ParseArgs configures the filter from command-line options.
func (f *SubProcess) ParseArgs(args []string) error {
	if err := plugin.Parse(f, args); err != nil {
		return err
	}
	if strings.TrimSpace(f.command) == "" {
		return errhandling.NewConfigurationError("sub-process filter: --command required", nil)
	}
	if err := template.ValidateSyntax(f.command); err != nil {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("sub-process filter: invalid --command %q", f.command), err)
	}
	switch strings.ToLower(strings.TrimSpace(f.onErrorRaw)) {
	case string(errhandling.OnErrorFail), string(errhandling.OnErrorSkip), string(errhandling.OnErrorLog):
		f.onError = errhandling.ParseOnErrorStrategy(f.onErrorRaw)
	default:
		return errhandling.NewConfigurationError(
			fmt.Sprintf("sub-process filter: invalid --on-error %q", f.onErrorRaw), nil)
	}
	return nil
}

// Init prepares the filter with the shared session.
func (f *SubProcess) Init(sess *session.Session) error {
	f.sess = sess
	return nil
}

// Process runs the command for the record and maps its exit status.
func (f *SubProcess) Process(rec record.Record) ([]record.Record, error) {
	resolved, err := template.Resolve(f.command, func(token string) (string, bool) {
		switch token {
		case "NAME":
			name, ok := record.NameOf(rec)
			return name, ok
		case "SOURCE":
			source, ok := record.SourceOf(rec)
			return source, ok
		}
		value, err := f.sess.GetPlaceholder(token)
		return value, err == nil
	})
	if err != nil {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("sub-process filter: cannot resolve command for %s", record.Describe(rec)), err)
	}

	tokens, err := cmdline.Split(resolved)
	if err != nil || len(tokens) == 0 {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("sub-process filter: malformed command %q", resolved), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, tokens[0], tokens[1:]...)
	cmd.Stdout = &stdout
	runErr := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, errhandling.NewTimeoutError(
			fmt.Sprintf("sub-process filter: %q exceeded %s", resolved, f.timeout), runErr)
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, errhandling.NewIOError(
				fmt.Sprintf("sub-process filter: cannot run %q", resolved), runErr)
		}
	}

	switch {
	case exitCode == 0:
		if f.replace {
			return []record.Record{strings.TrimRight(stdout.String(), "\n")}, nil
		}
		return []record.Record{rec}, nil
	case f.dropExitCode >= 0 && exitCode == f.dropExitCode:
		return nil, nil
	default:
		procErr := errhandling.NewProcessError(f.Name(), record.Describe(rec),
			fmt.Errorf("command %q exited with status %d", resolved, exitCode))
		switch f.onError {
		case errhandling.OnErrorSkip:
			logger.Warn("sub-process failed, skipping record",
				"command", resolved, "exit_code", exitCode)
			return nil, nil
		case errhandling.OnErrorLog:
			logger.Warn("sub-process failed, forwarding record",
				"command", resolved, "exit_code", exitCode)
			return []record.Record{rec}, nil
		default:
			return nil, procErr
		}
	}
}

// Close releases resources; sub-process holds none.
func (f *SubProcess) Close() error { return nil }

var _ Filter = (*SubProcess)(nil)
