package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/waikato-datamining/kasperl/pkg/pipeline"
)

// ToDefinition converts parsed definition data into a typed Definition.
// The data should have been schema-validated first; the conversion still
// reports structural surprises rather than panicking.
func ToDefinition(data map[string]interface{}) (*pipeline.Definition, error) {
	if data == nil {
		return nil, fmt.Errorf("definition data is nil")
	}

	def := &pipeline.Definition{}

	var err error
	if def.Name, err = optionalString(data, "name"); err != nil {
		return nil, err
	}
	if def.Description, err = optionalString(data, "description"); err != nil {
		return nil, err
	}
	if def.Generator, err = optionalString(data, "generator"); err != nil {
		return nil, err
	}
	if def.Reader, err = optionalString(data, "reader"); err != nil {
		return nil, err
	}
	if def.Reader == "" {
		return nil, fmt.Errorf("missing required field 'reader'")
	}
	if def.Writer, err = optionalString(data, "writer"); err != nil {
		return nil, err
	}

	if raw, ok := data["filters"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("field 'filters': expected list, got %T", raw)
		}
		for i, item := range list {
			spec, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("filter at index %d: expected string, got %T", i, item)
			}
			def.Filters = append(def.Filters, spec)
		}
	}

	if raw, ok := data["placeholders"]; ok {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field 'placeholders': expected mapping, got %T", raw)
		}
		def.Placeholders = make(map[string]string, len(m))
		for key, value := range m {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("placeholder %q: expected string, got %T", key, value)
			}
			def.Placeholders[key] = s
		}
	}

	return def, nil
}

func optionalString(data map[string]interface{}, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, raw)
	}
	return s, nil
}

// Load parses, validates and converts a definition file in one step. On
// parse or validation failure the Result carries the details and the error
// is the first of them.
func Load(filepath string) (*pipeline.Definition, *Result, error) {
	result := Parse(filepath)
	if !result.IsValid() {
		return nil, result, result.AllErrors()[0]
	}
	def, err := ToDefinition(result.Data)
	if err != nil {
		return nil, result, err
	}
	return def, result, nil
}

// MarshalDefinition re-emits a definition in normalized form. Format is
// "yaml" or "json".
func MarshalDefinition(def *pipeline.Definition, format string) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(def)
	case "json":
		return json.MarshalIndent(def, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
