package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadPlaceholders reads a placeholders file: one key=value pair per line,
// blank lines and #-comments ignored. Values may themselves contain
// placeholder tokens; they are resolved at use time, not here.
func LoadPlaceholders(filepath string) (map[string]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("cannot open placeholders file: %w", err)
	}
	defer file.Close()

	placeholders := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%s: line %d: expected key=value, got %q", filepath, lineNo, line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%s: line %d: empty placeholder name", filepath, lineNo)
		}
		placeholders[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read placeholders file: %w", err)
	}
	return placeholders, nil
}
