package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/pipeline-schema.json
var embeddedSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// EmbeddedSchema returns the embedded pipeline definition schema.
func EmbeddedSchema() []byte {
	return embeddedSchema
}

func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaDoc interface{}
		if err := json.Unmarshal(embeddedSchema, &schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		schemaURL := "https://waikato-datamining.github.io/kasperl/schemas/pipeline/v1.0.0/pipeline-schema.json"
		if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		compiledSchema, schemaInitErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaInitErr
}

// validate checks a parsed definition against the embedded schema.
func validate(data map[string]interface{}) []ValidationError {
	if len(data) == 0 {
		return []ValidationError{{
			Path:    "/",
			Type:    "required",
			Message: "definition is empty",
		}}
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return []ValidationError{{
			Path:    "/",
			Type:    "schema",
			Message: fmt.Sprintf("failed to load schema: %v", err),
		}}
	}

	validationErr := schema.Validate(data)
	if validationErr == nil {
		return nil
	}
	if detailed, ok := validationErr.(*jsonschema.ValidationError); ok {
		return convertValidationErrors(detailed)
	}
	return []ValidationError{{
		Path:    "/",
		Type:    "validation",
		Message: validationErr.Error(),
	}}
}

// convertValidationErrors flattens the nested jsonschema error tree.
func convertValidationErrors(err *jsonschema.ValidationError) []ValidationError {
	var errs []ValidationError

	if err.ErrorKind != nil {
		errs = append(errs, ValidationError{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Type:    extractErrorType(err),
			Message: err.Error(),
		})
	}
	for _, cause := range err.Causes {
		errs = append(errs, convertValidationErrors(cause)...)
	}
	return errs
}

func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

func extractErrorType(err *jsonschema.ValidationError) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "required"):
		return "required"
	case strings.Contains(msg, "additionalproperties"):
		return "additionalProperties"
	case strings.Contains(msg, "type"):
		return "type"
	case strings.Contains(msg, "pattern"):
		return "pattern"
	case strings.Contains(msg, "enum"):
		return "enum"
	case strings.Contains(msg, "minlength") || strings.Contains(msg, "length"):
		return "length"
	default:
		return "validation"
	}
}
