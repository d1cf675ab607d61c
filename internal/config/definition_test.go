package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/waikato-datamining/kasperl/pkg/pipeline"
)

func TestToDefinition(t *testing.T) {
	data := map[string]interface{}{
		"name":        "demo",
		"description": "example pipeline",
		"generator":   "range --var n --from 1 --to 3",
		"reader":      "list-files --dir {IN}",
		"filters":     []interface{}{"pass-through", "max-records --max 5"},
		"writer":      "console",
		"placeholders": map[string]interface{}{
			"IN": "/data/in",
		},
	}
	def, err := ToDefinition(data)
	if err != nil {
		t.Fatalf("ToDefinition: %v", err)
	}

	want := &pipeline.Definition{
		Name:         "demo",
		Description:  "example pipeline",
		Generator:    "range --var n --from 1 --to 3",
		Reader:       "list-files --dir {IN}",
		Filters:      []string{"pass-through", "max-records --max 5"},
		Writer:       "console",
		Placeholders: map[string]string{"IN": "/data/in"},
	}
	if !reflect.DeepEqual(def, want) {
		t.Errorf("definition = %+v, want %+v", def, want)
	}
}

func TestToDefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
		want string
	}{
		{"nil", nil, "nil"},
		{"missing reader", map[string]interface{}{"name": "x"}, "reader"},
		{"non-string reader", map[string]interface{}{"reader": 1}, "reader"},
		{"non-list filters", map[string]interface{}{"reader": "start", "filters": "oops"}, "filters"},
		{"non-string filter", map[string]interface{}{"reader": "start", "filters": []interface{}{1}}, "index 0"},
		{"non-string placeholder", map[string]interface{}{"reader": "start", "placeholders": map[string]interface{}{"A": 1}}, "placeholder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToDefinition(tt.data); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeTemp(t, "pipeline.yaml", validYAML)
	def, result, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !result.IsValid() {
		t.Errorf("result carries errors: %v", result.AllErrors())
	}
	if def.Name != "demo" || len(def.Filters) != 2 {
		t.Errorf("definition = %+v", def)
	}

	if _, _, err := Load(writeTemp(t, "bad.yaml", "name: only\n")); err == nil {
		t.Error("invalid definition loaded without error")
	}
}

func TestMarshalDefinition(t *testing.T) {
	def := &pipeline.Definition{Name: "demo", Reader: "start", Writer: "console"}

	out, err := MarshalDefinition(def, "yaml")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(string(out), "reader: start") {
		t.Errorf("yaml output = %q", out)
	}
	// Optional empty sections stay out of the normalized form.
	if strings.Contains(string(out), "generator") {
		t.Errorf("yaml output carries empty generator: %q", out)
	}

	out, err = MarshalDefinition(def, "json")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(string(out), `"reader": "start"`) {
		t.Errorf("json output = %q", out)
	}

	if _, err := MarshalDefinition(def, "toml"); err == nil {
		t.Error("unsupported format accepted")
	}
}

func TestLoadPlaceholders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ph.txt")
	content := "# seed values\nIN=/data/in\nOUT = /data/out\n\nEMPTY=\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadPlaceholders(path)
	if err != nil {
		t.Fatalf("LoadPlaceholders: %v", err)
	}
	want := map[string]string{"IN": "/data/in", "OUT": "/data/out", "EMPTY": ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("placeholders = %v, want %v", got, want)
	}
}

func TestLoadPlaceholdersErrors(t *testing.T) {
	if _, err := LoadPlaceholders(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing file accepted")
	}

	path := filepath.Join(t.TempDir(), "ph.txt")
	if err := os.WriteFile(path, []byte("just a line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlaceholders(path); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("got %v, want error naming line 1", err)
	}
}
