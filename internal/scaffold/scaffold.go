// Package scaffold creates new dataset projects from embedded templates.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/vvka-141/dsdist/internal/naming"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

//go:embed all:templates
var templatesFS embed.FS

// DefaultTemplate is used when no template is named.
const DefaultTemplate = "basic"

// Template placeholders.
const (
	placeholderName  = "{{DATASET_NAME}}"
	placeholderSlug  = "{{DATASET_SLUG}}"
	placeholderOwner = "{{OWNER}}"
)

// Project describes the project CreateProject writes.
type Project struct {
	Name     string // dataset name, checked with naming.Validate
	Owner    string // optional
	Template string // "" selects DefaultTemplate
}

// Scaffolder writes projects from the embedded templates.
type Scaffolder struct {
	logger dsdist.Logger
}

func NewScaffolder(logger dsdist.Logger) *Scaffolder {
	return &Scaffolder{logger: logger}
}

// CreateProject writes p's template into targetPath. targetPath must be
// missing or empty apart from a .env file; every failure of that kind, an
// invalid name or owner, and an unknown template wrap dsdist.ErrValidation.
func (s *Scaffolder) CreateProject(p Project, targetPath string) error {
	if err := naming.Validate(p.Name); err != nil {
		return err
	}
	if err := validateOwner(p.Owner); err != nil {
		return err
	}
	if p.Template == "" {
		p.Template = DefaultTemplate
	}

	root := path.Join("templates", p.Template)
	if info, err := fs.Stat(templatesFS, root); err != nil || !info.IsDir() {
		known, _ := ListTemplates()
		return fmt.Errorf("template '%s' not found (available: %s): %w", p.Template, strings.Join(known, ", "), dsdist.ErrValidation)
	}

	empty, err := isDirectoryEmpty(targetPath)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("target directory '%s' is not empty; dsdist init only writes into an empty directory: %w", targetPath, dsdist.ErrValidation)
	}
	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	s.logger.Verbose("Creating dataset '%s' at %s from template '%s'", p.Name, targetPath, p.Template)
	fill := strings.NewReplacer(
		placeholderName, p.Name,
		placeholderSlug, naming.Slug(p.Name),
		placeholderOwner, p.Owner,
	)
	if err := s.copyTemplate(root, targetPath, fill); err != nil {
		return fmt.Errorf("failed to copy template files: %w", err)
	}
	return nil
}

// validateOwner rejects characters that would break the quoted YAML value.
func validateOwner(owner string) error {
	for _, r := range owner {
		if r == '"' || r == '\\' || unicode.IsControl(r) {
			return fmt.Errorf("owner %q contains %q: %w", owner, r, dsdist.ErrValidation)
		}
	}
	return nil
}

func (s *Scaffolder) copyTemplate(root, targetPath string, fill *strings.Replacer) error {
	return fs.WalkDir(templatesFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == root {
			return err
		}
		rel := strings.TrimPrefix(p, root+"/")
		target := filepath.Join(targetPath, filepath.FromSlash(rel))

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		content, err := templatesFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", p, err)
		}
		s.logger.Verbose("Creating %s", rel)
		if err := os.WriteFile(target, []byte(fill.Replace(string(content))), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		return nil
	})
}

// ListTemplates returns the embedded template names, sorted.
func ListTemplates() ([]string, error) {
	entries, err := templatesFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// isDirectoryEmpty reports whether dir is missing or holds nothing but a
// .env file, so credentials can be set up before init.
func isDirectoryEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			return false, fmt.Errorf("'%s' is a file, not a directory: %w", dir, dsdist.ErrValidation)
		}
		return false, fmt.Errorf("failed to read directory: %w", err)
	}
	for _, e := range entries {
		if e.Name() != ".env" {
			return false, nil
		}
	}
	return true, nil
}

// BuildFileTree draws rootPath as an indented tree, entries sorted by name.
func BuildFileTree(rootPath string) (string, error) {
	var sb strings.Builder
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		abs = rootPath
	}
	sb.WriteString(abs + "/\n")
	if err := writeTree(&sb, rootPath, ""); err != nil {
		return "", fmt.Errorf("failed to build file tree: %w", err)
	}
	return sb.String(), nil
}

func writeTree(sb *strings.Builder, dir, indent string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for i, e := range entries {
		branch, next := "├── ", "│   "
		if i == len(entries)-1 {
			branch, next = "└── ", "    "
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		sb.WriteString(indent + branch + name + "\n")
		if e.IsDir() {
			if err := writeTree(sb, filepath.Join(dir, e.Name()), indent+next); err != nil {
				return err
			}
		}
	}
	return nil
}
