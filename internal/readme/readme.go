// Package readme renders the README shipped with every package: the
// dataset's own README followed by optional usage and license sections.
package readme

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/vvka-141/dsdist/internal/files/filesystem"
)

// Document is a README under construction.
type Document struct {
	name   string
	owner  string
	source []byte

	usage   []string
	license []string
}

// New reads the README at sourcePath. Missing files fail with
// dsdist.ErrNotFound and directories with dsdist.ErrIsADirectory.
func New(fsys filesystem.FileSystemProvider, name, owner, sourcePath string) (*Document, error) {
	abs, err := filesystem.RequireFile(fsys, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("readme: %w", err)
	}
	content, err := fsys.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read readme %s: %w", abs, err)
	}
	return &Document{name: name, owner: owner, source: content}, nil
}

// AddUsageDoc appends a usage link or paragraph. Adding the same doc twice is a no-op.
func (d *Document) AddUsageDoc(doc string) {
	d.usage = appendOnce(d.usage, doc)
}

// AddLicenseDoc appends a license link or paragraph. Adding the same doc twice is a no-op.
func (d *Document) AddLicenseDoc(doc string) {
	d.license = appendOnce(d.license, doc)
}

func appendOnce(list []string, doc string) []string {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return list
	}
	for _, existing := range list {
		if existing == doc {
			return list
		}
	}
	return append(list, doc)
}

// Render returns the markdown document.
func (d *Document) Render() []byte {
	var b bytes.Buffer

	if len(bytes.TrimSpace(d.source)) == 0 {
		fmt.Fprintf(&b, "# %s\n", d.name)
	} else {
		b.Write(bytes.TrimRight(d.source, "\n"))
		b.WriteByte('\n')
	}

	writeSection(&b, "Usage", d.usage)
	writeSection(&b, "License", d.license)

	if d.owner != "" {
		fmt.Fprintf(&b, "\n---\nDistributed by %s.\n", d.owner)
	}
	return b.Bytes()
}

func writeSection(b *bytes.Buffer, title string, docs []string) {
	if len(docs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, doc := range docs {
		if isURL(doc) {
			fmt.Fprintf(b, "- [%s](%s)\n", doc, doc)
			continue
		}
		b.WriteString(doc)
		b.WriteString("\n\n")
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
