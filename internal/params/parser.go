package params

import (
	"fmt"
	"strings"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// ParseKeyValuePairs converts a slice of "key=value" strings into a map.
// Keys and values are trimmed; later pairs override earlier ones.
//
// Example:
//
//	labels, err := ParseKeyValuePairs("label", []string{"RawPath=images", "SegPath=images"})
//	// Returns: map[string]string{"RawPath": "images", "SegPath": "images"}
func ParseKeyValuePairs(flag string, pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("--%s %q is not in key=value format: %w", flag, pair, dsdist.ErrInvalidConfig)
		}

		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("--%s %q has an empty key: %w", flag, pair, dsdist.ErrInvalidConfig)
		}

		result[key] = strings.TrimSpace(value)
	}

	return result, nil
}

// ParseGrouped collects "key=value" strings into key -> values, keeping
// input order within a key. Values without a key go to defaultKey.
//
// Example:
//
//	files := ParseGrouped([]string{"notes.txt", "protocols=p1.pdf"}, "supporting_files")
//	// Returns: map[string][]string{"supporting_files": {"notes.txt"}, "protocols": {"p1.pdf"}}
func ParseGrouped(values []string, defaultKey string) map[string][]string {
	result := make(map[string][]string)

	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			key, value = defaultKey, strings.TrimPrefix(v, "=")
		}
		result[key] = append(result[key], value)
	}

	return result
}
