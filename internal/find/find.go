// Package find implements deterministic file discovery: recursive directory
// walks with regexp include/exclude lists and optional ratio-based splitting
// into named lists. It backs the find-files command and the list-files
// reader.
package find

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/split"
)

// Options configure a file discovery run.
type Options struct {
	// Inputs are the directories to scan.
	Inputs []string

	// Recursive descends into subdirectories.
	Recursive bool

	// Match holds regexps; a file qualifies when at least one matches its
	// path. Empty means everything qualifies.
	Match []string

	// NotMatch holds regexps; a file is excluded when any matches its path.
	NotMatch []string

	// SplitNames and SplitRatios distribute the discovered files into named
	// lists. Both must be given together and pair up; ratios are positive
	// integers.
	SplitNames  []string
	SplitRatios []int
}

// Result holds the discovered files: the flat list in walk order and, when
// splitting was requested, the per-name lists.
type Result struct {
	Files  []string
	Splits map[string][]string
}

// Files discovers files according to opts. Directories are walked in
// lexicographic order, so the result is deterministic for a given tree.
func Files(opts Options) (*Result, error) {
	if len(opts.Inputs) == 0 {
		return nil, errhandling.NewConfigurationError("find: no input directories", nil)
	}

	match, err := compileAll(opts.Match)
	if err != nil {
		return nil, errhandling.NewConfigurationError("find: invalid --match expression", err)
	}
	notMatch, err := compileAll(opts.NotMatch)
	if err != nil {
		return nil, errhandling.NewConfigurationError("find: invalid --not-match expression", err)
	}

	var splitter *split.Splitter
	if len(opts.SplitNames) > 0 || len(opts.SplitRatios) > 0 {
		splitter, err = split.New(opts.SplitNames, opts.SplitRatios)
		if err != nil {
			return nil, errhandling.NewConfigurationError("find: invalid split configuration", err)
		}
	}

	result := &Result{}
	for _, input := range opts.Inputs {
		files, err := walk(input, opts.Recursive, match, notMatch)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, files...)
	}

	if splitter != nil {
		result.Splits = make(map[string][]string, len(opts.SplitNames))
		for _, name := range opts.SplitNames {
			result.Splits[name] = nil
		}
		for _, file := range result.Files {
			name := splitter.Next()
			result.Splits[name] = append(result.Splits[name], file)
		}
	}
	return result, nil
}

// walk collects the matching files under dir. WalkDir visits entries in
// lexicographic order.
func walk(dir string, recursive bool, match, notMatch []*regexp.Regexp) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !matchesAny(path, match, true) || matchesAny(path, notMatch, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errhandling.NewIOError(fmt.Sprintf("find: cannot scan %s", dir), err)
	}
	return files, nil
}

// matchesAny reports whether any expression matches path. An empty list
// returns the given default, so an absent include list keeps everything and
// an absent exclude list excludes nothing.
func matchesAny(path string, exprs []*regexp.Regexp, emptyDefault bool) bool {
	if len(exprs) == 0 {
		return emptyDefault
	}
	for _, re := range exprs {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		out[i] = re
	}
	return out, nil
}
