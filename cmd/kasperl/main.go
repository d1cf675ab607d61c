// Package main provides the kasperl CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/waikato-datamining/kasperl/internal/cli"
	"github.com/waikato-datamining/kasperl/internal/config"
	"github.com/waikato-datamining/kasperl/internal/factory"
	"github.com/waikato-datamining/kasperl/internal/find"
	"github.com/waikato-datamining/kasperl/internal/logger"
	"github.com/waikato-datamining/kasperl/internal/pathutil"
	"github.com/waikato-datamining/kasperl/internal/plugin"
	"github.com/waikato-datamining/kasperl/internal/registry"
	"github.com/waikato-datamining/kasperl/internal/runtime"
	"github.com/waikato-datamining/kasperl/pkg/pipeline"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose bool
	quiet   bool
	logFile string

	// Run command flags
	runGenerator    string
	runReader       string
	runFilters      []string
	runWriter       string
	runPipelineLine string
	placeholderFile string
	setValues       []string
	annotationsOnly bool
	dryRun          bool

	// Validate command flags
	printFormat string

	// Test-generator command flags
	testGeneratorSpec string

	// Find-files command flags
	findInputs      []string
	findRecursive   bool
	findMatch       []string
	findNotMatch    []string
	findSplitNames  []string
	findSplitRatios []int
	findOutput      string

	// Plugins command flags
	pluginKind string

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kasperl",
	Short: "kasperl - Plugin-composable record processing pipelines",
	Long: `kasperl runs record processing pipelines composed from plugins:
a reader produces records, a filter chain transforms or suppresses them,
and a writer persists the survivors. A generator can expand one pipeline
template into a whole series of runs.

Examples:
  # Run a pipeline definition file
  kasperl run pipeline.yaml

  # Run an ad-hoc pipeline from the command line
  kasperl run --reader "list-files --dir /data" --filter "max-records --max 10" --writer console

  # Validate a definition file
  kasperl validate pipeline.yaml`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		} else if quiet {
			level = slog.LevelError
		}
		if logFile != "" {
			if err := logger.SetLogFile(logFile, level, logger.FormatHuman); err != nil {
				fmt.Fprintf(os.Stderr, "✗ Cannot open log file: %v\n", err)
				os.Exit(ExitRuntimeError)
			}
		} else {
			logger.SetLevel(level)
		}
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		logger.CloseLogFile()
	},
}

var runCmd = &cobra.Command{
	Use:   "run [definition-file]",
	Short: "Run a pipeline to completion",
	Long: `Run a pipeline, either from a definition file or assembled from the
--generator/--reader/--filter/--writer flags. Flags override the
corresponding stages of the definition file.

Exit codes:
  0 - Pipeline ran successfully
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors

Examples:
  kasperl run pipeline.yaml
  kasperl run pipeline.yaml --set IN=/data/in --dry-run
  kasperl run --reader "from-text-file --input a.txt" --writer console
  kasperl run --pipeline "from-text-file --input a.txt | max-records --max 5 | console"`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPipeline,
}

var validateCmd = &cobra.Command{
	Use:   "validate <definition-file>",
	Short: "Validate a pipeline definition file",
	Long: `Parse and schema-validate a pipeline definition file without running it.
Supports YAML and JSON; the format is detected from the extension or content.

Exit codes:
  0 - Definition is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid YAML/JSON syntax)`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var testGeneratorCmd = &cobra.Command{
	Use:   "test-generator",
	Short: "Print a generator's bindings without running anything",
	Long: `Expand a variable generator and print the bindings it produces, one
per line. Useful for checking a generator before wiring it into a pipeline.

Example:
  kasperl test-generator --generator "range --var n --from 1 --to 5"`,
	Run: runTestGenerator,
}

var findFilesCmd = &cobra.Command{
	Use:   "find-files",
	Short: "Discover files with regexp filters and optional splitting",
	Long: `Scan directories for files, filter them with --match/--not-match
regular expressions, and optionally distribute them into named lists by
integer ratios.

Examples:
  kasperl find-files --input /data --match '\.png$'
  kasperl find-files --input /data --split-names train,test --split-ratios 70,30 --output files.txt`,
	Run: runFindFiles,
}

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered plugins",
	Long: `List the registered plugins with their descriptions. Use --kind to
restrict the listing and --verbose to include each plugin's options.`,
	Run: runPlugins,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file (JSON, size-rotated)")

	runCmd.Flags().StringVar(&runGenerator, "generator", "", "Variable generator command line")
	runCmd.Flags().StringVar(&runReader, "reader", "", "Reader command line")
	runCmd.Flags().StringArrayVar(&runFilters, "filter", nil, "Filter command line; repeatable, applied in order")
	runCmd.Flags().StringVar(&runWriter, "writer", "", "Writer command line")
	runCmd.Flags().StringVar(&runPipelineLine, "pipeline", "", "Whole pipeline as one \"|\"-chained command line")
	runCmd.Flags().StringVar(&placeholderFile, "placeholders", "", "File with key=value placeholder pairs")
	runCmd.Flags().StringArrayVar(&setValues, "set", nil, "Set a placeholder (NAME=VALUE); repeatable")
	runCmd.Flags().BoolVar(&annotationsOnly, "annotations-only", false, "Restrict capable plugins to records with annotations")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print records instead of writing them")

	validateCmd.Flags().StringVar(&printFormat, "print", "", "Re-emit the normalized definition (yaml or json)")

	testGeneratorCmd.Flags().StringVar(&testGeneratorSpec, "generator", "", "Variable generator command line (required)")

	findFilesCmd.Flags().StringArrayVar(&findInputs, "input", nil, "Directory to scan; repeatable (required)")
	findFilesCmd.Flags().BoolVar(&findRecursive, "recursive", true, "Descend into subdirectories")
	findFilesCmd.Flags().StringArrayVar(&findMatch, "match", nil, "Regexp a file path must match; repeatable")
	findFilesCmd.Flags().StringArrayVar(&findNotMatch, "not-match", nil, "Regexp that excludes a file path; repeatable")
	findFilesCmd.Flags().StringSliceVar(&findSplitNames, "split-names", nil, "Names of the splits (e.g. train,test)")
	findFilesCmd.Flags().IntSliceVar(&findSplitRatios, "split-ratios", nil, "Integer ratios of the splits (e.g. 70,30)")
	findFilesCmd.Flags().StringVar(&findOutput, "output", "", "Write the file lists instead of printing them")

	pluginsCmd.Flags().StringVar(&pluginKind, "kind", "", "Restrict to one kind: generator, reader, filter or writer")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(testGeneratorCmd)
	rootCmd.AddCommand(findFilesCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadDefinition assembles the pipeline definition from the optional file
// plus the run command's flags. Flags override file stages.
func loadDefinition(args []string) *pipeline.Definition {
	def := &pipeline.Definition{}

	if len(args) == 1 {
		if !quiet {
			fmt.Printf("Loading pipeline definition: %s\n", args[0])
		}
		result := config.Parse(args[0])
		if len(result.ParseErrors) > 0 {
			cli.PrintParseErrors(result.ParseErrors, verbose)
			os.Exit(ExitParseError)
		}
		if len(result.ValidationErrors) > 0 {
			cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
			os.Exit(ExitValidationError)
		}
		var err error
		def, err = config.ToDefinition(result.Data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ Invalid definition: %v\n", err)
			os.Exit(ExitValidationError)
		}
	}

	if runPipelineLine != "" {
		readerSpec, filterSpecs, writerSpec, err := factory.SplitPipelineLine(runPipelineLine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			os.Exit(ExitValidationError)
		}
		def.Reader = readerSpec
		def.Filters = filterSpecs
		def.Writer = writerSpec
	}
	if runGenerator != "" {
		def.Generator = runGenerator
	}
	if runReader != "" {
		def.Reader = runReader
	}
	if len(runFilters) > 0 {
		def.Filters = runFilters
	}
	if runWriter != "" {
		def.Writer = runWriter
	}

	if def.Reader == "" {
		fmt.Fprintln(os.Stderr, "✗ No reader: give a definition file or --reader")
		os.Exit(ExitValidationError)
	}
	return def
}

// collectPlaceholders merges the --placeholders file and --set pairs.
func collectPlaceholders() map[string]string {
	placeholders := make(map[string]string)

	if placeholderFile != "" {
		loaded, err := config.LoadPlaceholders(placeholderFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			os.Exit(ExitParseError)
		}
		for name, value := range loaded {
			placeholders[name] = value
		}
	}
	for _, pair := range setValues {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			fmt.Fprintf(os.Stderr, "✗ Invalid --set %q: expected NAME=VALUE\n", pair)
			os.Exit(ExitValidationError)
		}
		placeholders[name] = value
	}
	return placeholders
}

func runPipeline(cmd *cobra.Command, args []string) {
	def := loadDefinition(args)

	if verbose {
		cli.PrintDefinitionSummary(def)
	}
	if !quiet {
		if dryRun {
			fmt.Println("Running pipeline (dry run - no records will be written)...")
		} else {
			fmt.Println("Running pipeline...")
		}
	}

	executor := runtime.New(def, runtime.Options{
		DryRun:          dryRun,
		AnnotationsOnly: annotationsOnly,
		Placeholders:    collectPlaceholders(),
	})
	result, err := executor.Execute(cmd.Context())

	cli.PrintExecutionResult(result, err, cli.OutputOptions{
		Verbose: verbose,
		Quiet:   quiet,
		DryRun:  dryRun,
	})
	if err != nil {
		os.Exit(ExitRuntimeError)
	}
	os.Exit(ExitSuccess)
}

func runValidate(_ *cobra.Command, args []string) {
	path := args[0]
	if !quiet {
		fmt.Printf("Validating definition: %s\n", path)
	}

	result := config.Parse(path)
	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}
	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	def, err := config.ToDefinition(result.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Invalid definition: %v\n", err)
		os.Exit(ExitValidationError)
	}

	if printFormat != "" {
		normalized, err := config.MarshalDefinition(def, printFormat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
			os.Exit(ExitValidationError)
		}
		os.Stdout.Write(normalized)
		os.Exit(ExitSuccess)
	}

	if !quiet {
		fmt.Printf("✓ Definition is valid (format: %s)\n", result.Format)
		if verbose {
			cli.PrintDefinitionSummary(def)
		}
	}
	os.Exit(ExitSuccess)
}

func runTestGenerator(_ *cobra.Command, _ []string) {
	if testGeneratorSpec == "" {
		fmt.Fprintln(os.Stderr, "✗ --generator is required")
		os.Exit(ExitValidationError)
	}

	g, err := factory.BuildGenerator(testGeneratorSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(ExitValidationError)
	}
	bindings, err := g.Generate()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	if !quiet {
		fmt.Printf("%d binding(s):\n", len(bindings))
	}
	for i, binding := range bindings {
		fmt.Printf("  [%d] %v\n", i, binding)
	}
	os.Exit(ExitSuccess)
}

func runFindFiles(_ *cobra.Command, _ []string) {
	result, err := find.Files(find.Options{
		Inputs:      findInputs,
		Recursive:   findRecursive,
		Match:       findMatch,
		NotMatch:    findNotMatch,
		SplitNames:  findSplitNames,
		SplitRatios: findSplitRatios,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(ExitValidationError)
	}

	if findOutput == "" {
		printFileLists(result)
		os.Exit(ExitSuccess)
	}
	if err := writeFileLists(result, findOutput); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(ExitRuntimeError)
	}
	if !quiet {
		fmt.Printf("✓ %d file(s) found\n", len(result.Files))
	}
	os.Exit(ExitSuccess)
}

func printFileLists(result *find.Result) {
	if result.Splits == nil {
		for _, file := range result.Files {
			fmt.Println(file)
		}
		return
	}
	for _, name := range findSplitNames {
		fmt.Printf("# %s (%d)\n", name, len(result.Splits[name]))
		for _, file := range result.Splits[name] {
			fmt.Println(file)
		}
	}
}

// writeFileLists writes the flat list to path, or one file per split with
// the split name inserted before the extension.
func writeFileLists(result *find.Result, path string) error {
	if err := pathutil.ValidateFilePath(path); err != nil {
		return err
	}
	if result.Splits == nil {
		return writeLines(path, result.Files)
	}
	stem, ext := pathutil.SplitExt(path)
	for _, name := range findSplitNames {
		if err := writeLines(stem+"-"+name+ext, result.Splits[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(path string, lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func runPlugins(_ *cobra.Command, _ []string) {
	kinds := []struct {
		kind  string
		names []string
		build func(name string) plugin.Plugin
	}{
		{"generator", registry.ListGenerators(), func(n string) plugin.Plugin { return registry.GetGeneratorConstructor(n)() }},
		{"reader", registry.ListReaders(), func(n string) plugin.Plugin { return registry.GetReaderConstructor(n)() }},
		{"filter", registry.ListFilters(), func(n string) plugin.Plugin { return registry.GetFilterConstructor(n)() }},
		{"writer", registry.ListWriters(), func(n string) plugin.Plugin { return registry.GetWriterConstructor(n)() }},
	}

	found := false
	for _, k := range kinds {
		if pluginKind != "" && pluginKind != k.kind {
			continue
		}
		found = true
		fmt.Printf("%ss:\n", strings.ToUpper(k.kind[:1])+k.kind[1:])
		for _, name := range k.names {
			p := k.build(name)
			fmt.Printf("  %-28s %s\n", name, p.Description())
			if verbose {
				usage := plugin.Usage(p)
				if usage != "" {
					fmt.Print(indent(usage, "    "))
				}
			}
		}
		fmt.Println()
	}
	if !found {
		fmt.Fprintf(os.Stderr, "✗ Unknown plugin kind %q\n", pluginKind)
		os.Exit(ExitValidationError)
	}
	os.Exit(ExitSuccess)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
