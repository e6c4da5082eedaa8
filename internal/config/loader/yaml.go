package loader

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeYAML(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		perr := &ParseError{Err: err}
		var te *yaml.TypeError
		if !errors.As(err, &te) {
			perr.Line = yamlLine(err.Error())
		}
		return nil, perr
	}
	return normalize(m), nil
}

// yamlLine extracts N from yaml.v3 syntax errors of the form
// "yaml: line N: ...".
func yamlLine(msg string) int {
	var n int
	if _, err := fmt.Sscanf(msg, "yaml: line %d:", &n); err != nil {
		return 0
	}
	return n
}

// normalize converts the map[any]any values yaml produces for
// non-string keys so DeepMerge sees uniform nested maps.
func normalize(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalize(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	default:
		return v
	}
}
