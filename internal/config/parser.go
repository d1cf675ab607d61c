package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse reads, parses and schema-validates a pipeline definition file. The
// format is detected from the extension; unknown extensions are sniffed from
// the content (JSON first, then YAML).
func Parse(filepath string) *Result {
	result := &Result{FilePath: filepath}

	content, err := os.ReadFile(filepath)
	if err != nil {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Path:    filepath,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result
	}

	parsed := ParseString(string(content), DetectFormat(filepath))
	parsed.FilePath = filepath
	for i := range parsed.ParseErrors {
		if parsed.ParseErrors[i].Path == "" {
			parsed.ParseErrors[i].Path = filepath
		}
	}
	return parsed
}

// ParseString parses and schema-validates definition content. An empty
// format is auto-detected from the content.
func ParseString(content, format string) *Result {
	result := &Result{Format: format}

	if format == "" {
		switch {
		case looksLikeJSON(content):
			result.Format = "json"
		case looksLikeYAML(content):
			result.Format = "yaml"
		default:
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Message: "unable to detect definition format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
	}

	var data map[string]interface{}
	var errs []ParseError
	switch result.Format {
	case "json":
		data, errs = parseJSON(content)
	case "yaml":
		data, errs = parseYAML(content)
	default:
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Message: fmt.Sprintf("unsupported format: %s", result.Format),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	result.Data = data
	result.ParseErrors = errs
	if len(errs) > 0 {
		return result
	}

	result.ValidationErrors = validate(data)
	return result
}

// DetectFormat detects the definition format from the file extension.
// Returns "json", "yaml" or empty when the extension is unknown.
func DetectFormat(filepath string) string {
	switch strings.ToLower(path.Ext(filepath)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

func parseJSON(content string) (map[string]interface{}, []ParseError) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, []ParseError{{
			Message: "empty content: expected JSON object",
			Type:    ErrorTypeSyntax,
		}}
	}

	var data interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, []ParseError{jsonParseError(err, content)}
	}
	if data == nil {
		return nil, nil
	}

	dataMap, ok := data.(map[string]interface{})
	if !ok {
		return nil, []ParseError{{
			Message: fmt.Sprintf("invalid definition: expected JSON object, got %T", data),
			Type:    ErrorTypeFormat,
		}}
	}
	return dataMap, nil
}

// jsonParseError extracts line/column details from encoding/json errors.
func jsonParseError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		parseErr.Offset = syntaxErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		parseErr.Offset = typeErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, typeErr.Offset)
		parseErr.Message = fmt.Sprintf("type error at field '%s': expected %s, got %s",
			typeErr.Field, typeErr.Type.String(), typeErr.Value)
	}
	return parseErr
}

// offsetToLineColumn converts a byte offset to 1-based line and column.
func offsetToLineColumn(content string, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

func parseYAML(content string) (map[string]interface{}, []ParseError) {
	if strings.TrimSpace(content) == "" {
		return nil, []ParseError{{
			Message: "empty content: expected YAML document",
			Type:    ErrorTypeSyntax,
		}}
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		return nil, []ParseError{yamlParseError(err)}
	}
	if data == nil {
		return nil, nil
	}

	dataMap, ok := data.(map[string]interface{})
	if !ok {
		return nil, []ParseError{{
			Message: fmt.Sprintf("invalid definition: expected YAML mapping, got %T", data),
			Type:    ErrorTypeFormat,
		}}
	}
	return dataMap, nil
}

// yamlParseError extracts line details from yaml.v3 errors. The library
// encodes the line in the message as "yaml: line X: ...".
func yamlParseError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	if typeErr, ok := err.(*yaml.TypeError); ok {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}
	if strings.Contains(err.Error(), "yaml: line ") {
		var line int
		if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
			parseErr.Line = line
		}
	}
	return parseErr
}

func looksLikeJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// looksLikeYAML reports whether the content parses as a non-empty YAML
// document. JSON is also valid YAML, so check JSON first.
func looksLikeYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	return yaml.Unmarshal([]byte(content), &data) == nil && data != nil
}
