// Package naming validates dataset names and derives path-safe slugs.
package naming

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Validate accepts names made only of letters, digits, spaces, '-' and '_'.
func Validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("dataset name must not be empty: %w", dsdist.ErrValidation)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			continue
		}
		return fmt.Errorf("dataset name %q contains %q; only letters, digits, spaces, '-' and '_' are allowed: %w", name, r, dsdist.ErrValidation)
	}
	return nil
}

// Slug lowercases name and replaces runs of spaces with a single '_'.
func Slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}
