package cli

import (
	"fmt"
	"os"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/pkg/pipeline"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// PrintExecutionResult displays the pipeline execution result.
func PrintExecutionResult(result *pipeline.ExecutionResult, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(os.Stderr, "✗ No execution result available")
		return
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Pipeline run failed")
		fmt.Fprintf(os.Stderr, "  Category: %s\n", errhandling.GetErrorCategory(err))
		fmt.Fprintf(os.Stderr, "  Error: %s\n", err.Error())
		if n := len(result.Bindings); n > 0 {
			fmt.Fprintf(os.Stderr, "  Failed in binding %d\n", n-1)
		}
		return
	}

	if opts.Quiet {
		return
	}

	if opts.DryRun {
		fmt.Println("✓ Dry run completed (no records were written)")
	} else {
		fmt.Println("✓ Pipeline run completed")
	}
	fmt.Printf("  Records read: %d\n", result.RecordsRead())
	fmt.Printf("  Records written: %d\n", result.RecordsWritten())
	if dropped := result.RecordsDropped(); dropped > 0 {
		fmt.Printf("  Records dropped: %d\n", dropped)
	}
	if len(result.Bindings) > 1 {
		fmt.Printf("  Bindings: %d\n", len(result.Bindings))
	}
	if opts.Verbose {
		fmt.Printf("  Run ID: %s\n", result.RunID)
		fmt.Printf("  Duration: %v\n", result.Duration())
		printBindingBreakdown(result)
	}
}

// printBindingBreakdown lists per-binding counts for verbose output.
func printBindingBreakdown(result *pipeline.ExecutionResult) {
	if len(result.Bindings) < 2 {
		return
	}
	for i, b := range result.Bindings {
		fmt.Printf("    [%d] %v: read %d, written %d, dropped %d\n",
			i, b.Binding, b.RecordsRead, b.RecordsWritten, b.RecordsDropped)
	}
}

// PrintDefinitionSummary prints the definition's identity after validation.
func PrintDefinitionSummary(def *pipeline.Definition) {
	if def == nil {
		return
	}
	if def.Name != "" {
		fmt.Printf("  Pipeline: %s\n", def.Name)
	}
	if def.Description != "" {
		fmt.Printf("  Description: %s\n", def.Description)
	}
	fmt.Printf("  Reader: %s\n", firstToken(def.Reader))
	if len(def.Filters) > 0 {
		fmt.Printf("  Filters: %d\n", len(def.Filters))
	}
	if def.Writer != "" {
		fmt.Printf("  Writer: %s\n", firstToken(def.Writer))
	}
}

func firstToken(spec string) string {
	for i, r := range spec {
		if r == ' ' {
			return spec[:i]
		}
	}
	return spec
}
