package reader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/logger"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// Post-poll actions applied to the picked-up files.
const (
	PollActionNothing = "nothing"
	PollActionMove    = "move"
	PollActionDelete  = "delete"
)

// Wait-forever sentinel for --timeout.
const pollNoTimeout = -1

// PollDir polls a directory for files until some appear or the timeout
// budget is exhausted. One Read call is one poll batch; --max-passes
// controls how many batches make up the pass, 0 meaning unbounded.
type PollDir struct {
	plugin.Base
	dir        string
	dirOut     string
	extensions []string
	maxFiles   int
	timeoutSec int
	interval   time.Duration
	action     string
	maxPasses  int

	sess     *session.Session
	pollDir  string
	moveDir  string
	passes   int
	finished bool
}

// NewPollDir creates an unconfigured poll-dir reader.
func NewPollDir() Reader {
	return &PollDir{
		Base: plugin.NewBase("poll-dir",
			"Polls a directory for files and forwards them as records."),
		maxFiles:   -1,
		timeoutSec: 30,
		interval:   time.Second,
		action:     PollActionNothing,
		maxPasses:  1,
	}
}

// DefineFlags declares the reader's options.
func (r *PollDir) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&r.dir, "dir", "", "Directory to poll; may contain placeholders.")
	fs.StringVar(&r.dirOut, "dir-out", "", "Directory to move picked-up files to (--action move).")
	fs.StringSliceVar(&r.extensions, "ext", nil, "Extensions to pick up, incl. dot; empty for all files.")
	fs.IntVar(&r.maxFiles, "max-files", r.maxFiles, "Maximum files per poll; <1 for unlimited.")
	fs.IntVar(&r.timeoutSec, "timeout", r.timeoutSec, "Seconds to wait for files before giving up; -1 waits forever.")
	fs.DurationVar(&r.interval, "interval", r.interval, "Wait between polls.")
	fs.StringVar(&r.action, "action", r.action, "Action applied to picked-up files: nothing, move or delete.")
	fs.IntVar(&r.maxPasses, "max-passes", r.maxPasses, "Number of poll batches per pass; 0 for unbounded.")
}

// ParseArgs configures the reader from command-line options.
func (r *PollDir) ParseArgs(args []string) error {
	if err := plugin.Parse(r, args); err != nil {
		return err
	}
	if r.dir == "" {
		return errhandling.NewConfigurationError("poll-dir reader: --dir required", nil)
	}
	switch r.action {
	case PollActionNothing, PollActionDelete:
	case PollActionMove:
		if r.dirOut == "" {
			return errhandling.NewConfigurationError("poll-dir reader: --action move requires --dir-out", nil)
		}
	default:
		return errhandling.NewConfigurationError(
			fmt.Sprintf("poll-dir reader: unknown --action %q", r.action), nil)
	}
	if r.timeoutSec < 0 && r.timeoutSec != pollNoTimeout {
		return errhandling.NewConfigurationError("poll-dir reader: --timeout must be >= 0 or -1", nil)
	}
	if r.interval <= 0 {
		return errhandling.NewConfigurationError("poll-dir reader: --interval must be positive", nil)
	}
	if r.maxPasses < 0 {
		return errhandling.NewConfigurationError("poll-dir reader: --max-passes must be >= 0", nil)
	}
	return nil
}

// Init resolves the directories and checks they exist.
func (r *PollDir) Init(sess *session.Session) error {
	r.sess = sess
	r.passes = 0
	r.finished = false

	var err error
	r.pollDir, err = sess.Resolve(r.dir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(r.pollDir); err != nil || !info.IsDir() {
		return errhandling.NewConfigurationError(
			fmt.Sprintf("poll-dir reader: not a directory: %s", r.pollDir), err)
	}

	if r.action == PollActionMove {
		r.moveDir, err = sess.Resolve(r.dirOut)
		if err != nil {
			return err
		}
		if info, err := os.Stat(r.moveDir); err != nil || !info.IsDir() {
			return errhandling.NewConfigurationError(
				fmt.Sprintf("poll-dir reader: not a directory: %s", r.moveDir), err)
		}
	}

	return nil
}

// Read performs one poll batch, waiting between polls until files appear or
// the timeout budget runs out.
func (r *PollDir) Read(ctx context.Context) ([]record.Record, error) {
	if r.finished {
		return nil, nil
	}

	files, err := r.waitForFiles(ctx)
	if err != nil {
		r.finished = true
		return nil, err
	}

	records := make([]record.Record, 0, len(files))
	for _, path := range files {
		rec := record.NewFileRecord(path)
		switch r.action {
		case PollActionDelete:
			if err := os.Remove(path); err != nil {
				return records, errhandling.NewIOError(
					fmt.Sprintf("poll-dir reader: cannot delete %s", path), err)
			}
		case PollActionMove:
			target := filepath.Join(r.moveDir, filepath.Base(path))
			if err := os.Rename(path, target); err != nil {
				return records, errhandling.NewIOError(
					fmt.Sprintf("poll-dir reader: cannot move %s to %s", path, r.moveDir), err)
			}
			rec.SetSource(target)
		}
		records = append(records, rec)
	}

	r.passes++
	if r.maxPasses > 0 && r.passes >= r.maxPasses {
		r.finished = true
	}
	return records, nil
}

// waitForFiles polls until files appear. With a non-negative timeout the
// retry budget is timeout/interval attempts; otherwise polling loops until
// files show up or the context is cancelled.
func (r *PollDir) waitForFiles(ctx context.Context) ([]string, error) {
	intervalMs := int(r.interval.Milliseconds())
	if intervalMs < 1 {
		// Sub-millisecond intervals round up so the delay stays non-zero.
		intervalMs = 1
	}
	attempts := 60
	if r.timeoutSec != pollNoTimeout {
		attempts = int(time.Duration(r.timeoutSec) * time.Second / r.interval)
		if attempts < 1 {
			attempts = 1
		}
	}

	executor := errhandling.NewRetryExecutor(errhandling.RetryConfig{
		MaxAttempts:       attempts,
		DelayMs:           intervalMs,
		BackoffMultiplier: 1.0,
		MaxDelayMs:        intervalMs,
	})

	poll := func(ctx context.Context) (interface{}, error) {
		files, err := r.listFiles()
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, errhandling.NewTimeoutError(
				fmt.Sprintf("poll-dir reader: no files in %s yet", r.pollDir), nil)
		}
		return files, nil
	}

	onAttempt := func(attempt int, err error, nextDelay time.Duration) {
		if err != nil && nextDelay > 0 {
			logger.Debug("poll-dir reader: no files yet",
				"dir", r.pollDir, "attempt", attempt+1, "next_delay", nextDelay.String())
		}
	}

	for {
		result, err := executor.ExecuteWithCallback(ctx, poll, onAttempt)
		if err == nil {
			return result.([]string), nil
		}
		if r.timeoutSec == pollNoTimeout && errors.Is(err, errhandling.ErrTimeout) && ctx.Err() == nil {
			continue
		}
		if errors.Is(err, errhandling.ErrTimeout) {
			info := executor.GetRetryInfo()
			return nil, errhandling.NewTimeoutError(
				fmt.Sprintf("poll-dir reader: no files in %s within %ds after %d polls",
					r.pollDir, r.timeoutSec, info.TotalAttempts), err)
		}
		return nil, err
	}
}

// listFiles returns the current matching files, sorted, capped at maxFiles.
func (r *PollDir) listFiles() ([]string, error) {
	entries, err := os.ReadDir(r.pollDir)
	if err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("poll-dir reader: cannot list %s", r.pollDir), err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if len(r.extensions) > 0 && !r.matchesExtension(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if r.maxFiles > 0 && len(names) > r.maxFiles {
		names = names[:r.maxFiles]
	}

	files := make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(r.pollDir, name)
	}
	return files, nil
}

// matchesExtension checks the file name against the configured extensions.
func (r *PollDir) matchesExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range r.extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// HasFinished reports whether the pass is complete.
func (r *PollDir) HasFinished() bool { return r.finished }

// Unbounded reports whether the reader polls indefinitely.
func (r *PollDir) Unbounded() bool { return r.maxPasses == 0 }

// Close releases resources; poll-dir holds none.
func (r *PollDir) Close() error { return nil }

var _ Reader = (*PollDir)(nil)
var _ Unbounded = (*PollDir)(nil)
