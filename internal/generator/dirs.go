package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/pflag"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/plugin"
)

// Dirs binds a variable across the names of the subdirectories of a
// directory, sorted for deterministic run order.
type Dirs struct {
	SingleVariable
	dir      string
	absolute bool
}

// NewDirs creates an unconfigured dirs generator.
func NewDirs() Generator {
	return &Dirs{
		SingleVariable: NewSingleVariable("dirs",
			"Binds the variable across the subdirectory names of a directory.", "dir"),
	}
}

// DefineFlags declares the generator's options.
func (g *Dirs) DefineFlags(fs *pflag.FlagSet) {
	g.DefineVarFlag(fs)
	fs.StringVar(&g.dir, "dir", "", "Directory whose subdirectories supply the values.")
	fs.BoolVar(&g.absolute, "absolute", false, "Bind absolute paths instead of bare names.")
}

// ParseArgs configures the generator from command-line options.
func (g *Dirs) ParseArgs(args []string) error {
	if err := plugin.Parse(g, args); err != nil {
		return err
	}
	if g.dir == "" {
		return errhandling.NewConfigurationError("dirs generator: --dir required", nil)
	}
	return nil
}

// Generate returns one binding per subdirectory, sorted by name.
func (g *Dirs) Generate() ([]Binding, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, errhandling.NewIOError(
			fmt.Sprintf("dirs generator: cannot list %s", g.dir), err)
	}

	var values []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if g.absolute {
			abs, err := filepath.Abs(filepath.Join(g.dir, entry.Name()))
			if err != nil {
				return nil, errhandling.NewIOError(
					fmt.Sprintf("dirs generator: cannot resolve %s", entry.Name()), err)
			}
			values = append(values, abs)
		} else {
			values = append(values, entry.Name())
		}
	}
	sort.Strings(values)

	return g.Bind(values), nil
}

var _ Generator = (*Dirs)(nil)
