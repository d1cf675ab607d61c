package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
)

// CSVFile produces one binding per data row of a CSV file, with the column
// headers naming the variables. The only shipped multi-variable generator.
type CSVFile struct {
	plugin.Base
	input string
}

// NewCSVFile creates an unconfigured csv-file generator.
func NewCSVFile() Generator {
	return &CSVFile{
		Base: plugin.NewBase("csv-file",
			"Produces one binding per CSV row, column headers naming the variables."),
	}
}

// DefineFlags declares the generator's options.
func (g *CSVFile) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&g.input, "input", "", "CSV file with a header row.")
}

// ParseArgs configures the generator from command-line options.
func (g *CSVFile) ParseArgs(args []string) error {
	if err := plugin.Parse(g, args); err != nil {
		return err
	}
	if g.input == "" {
		return errhandling.NewConfigurationError("csv-file generator: --input required", nil)
	}
	return nil
}

// Generate reads the CSV file and returns one binding per data row.
func (g *CSVFile) Generate() ([]Binding, error) {
	f, err := os.Open(g.input)
	if err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("csv-file generator: cannot open %s", g.input), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("csv-file generator: %s has no header row", g.input), nil)
	}
	if err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("csv-file generator: cannot read %s", g.input), err)
	}

	var bindings []Binding
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errhandling.NewIOError(
				fmt.Sprintf("csv-file generator: cannot read %s", g.input), err)
		}
		binding := make(Binding, len(header))
		for i, name := range header {
			binding[name] = row[i]
		}
		bindings = append(bindings, binding)
	}

	return bindings, nil
}

var _ Generator = (*CSVFile)(nil)
