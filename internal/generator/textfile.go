package generator

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
)

// TextFile binds a variable across the lines of a text file.
// Blank lines and lines starting with "#" are skipped.
type TextFile struct {
	SingleVariable
	input string
}

// NewTextFile creates an unconfigured text-file generator.
func NewTextFile() Generator {
	return &TextFile{
		SingleVariable: NewSingleVariable("text-file",
			"Binds the variable across the non-empty, non-comment lines of a text file.", "v"),
	}
}

// DefineFlags declares the generator's options.
func (g *TextFile) DefineFlags(fs *pflag.FlagSet) {
	g.DefineVarFlag(fs)
	fs.StringVar(&g.input, "input", "", "Text file supplying one value per line.")
}

// ParseArgs configures the generator from command-line options.
func (g *TextFile) ParseArgs(args []string) error {
	if err := plugin.Parse(g, args); err != nil {
		return err
	}
	if g.input == "" {
		return errhandling.NewConfigurationError("text-file generator: --input required", nil)
	}
	return nil
}

// Generate returns one binding per usable line, in file order.
func (g *TextFile) Generate() ([]Binding, error) {
	f, err := os.Open(g.input)
	if err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("text-file generator: cannot open %s", g.input), err)
	}
	defer f.Close()

	var values []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values = append(values, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("text-file generator: cannot read %s", g.input), err)
	}

	return g.Bind(values), nil
}

var _ Generator = (*TextFile)(nil)
