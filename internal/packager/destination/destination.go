// Package destination parses the destination a package is pushed to.
//
// Accepted forms:
//
//	""                              local build in the default build directory
//	file:///abs/dir, file://rel/dir local build under dir
//	s3://bucket/prefix              Amazon S3 or an S3-compatible store
//	az://container/prefix           Azure Blob Storage
//	postgres://user@host/db?...     PostgreSQL package catalog
package destination

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Kind identifies a packaging backend.
type Kind int

const (
	Local Kind = iota
	S3
	Azure
	Catalog
)

func (k Kind) String() string {
	switch k {
	case Local:
		return "local"
	case S3:
		return "s3"
	case Azure:
		return "azure"
	case Catalog:
		return "catalog"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Destination is a parsed push target.
type Destination struct {
	Kind Kind
	Raw  string

	// Dir is the build directory of a local destination ("" = configured default).
	Dir string

	// Container is the S3 bucket or Azure container.
	Container string

	// Prefix is the object key prefix inside Container, without surrounding slashes.
	Prefix string
}

// Remote reports whether pushing leaves the local machine.
func (d Destination) Remote() bool { return d.Kind != Local }

// Key joins the prefix and parts into an object key.
func (d Destination) Key(parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	if d.Prefix != "" {
		all = append(all, d.Prefix)
	}
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			all = append(all, p)
		}
	}
	return strings.Join(all, "/")
}

// Parse classifies raw. Unknown schemes fail with dsdist.ErrValidation.
func Parse(raw string) (Destination, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Destination{Kind: Local}, nil
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Destination{}, fmt.Errorf("destination %q has no scheme (file://, s3://, az://, postgres://): %w", raw, dsdist.ErrValidation)
	}

	switch strings.ToLower(scheme) {
	case "file":
		if rest == "" {
			return Destination{}, fmt.Errorf("destination %q has no directory: %w", raw, dsdist.ErrValidation)
		}
		return Destination{Kind: Local, Raw: raw, Dir: rest}, nil

	case "s3", "az":
		container, prefix, _ := strings.Cut(rest, "/")
		if container == "" {
			return Destination{}, fmt.Errorf("destination %q has no bucket or container: %w", raw, dsdist.ErrValidation)
		}
		kind := S3
		if strings.EqualFold(scheme, "az") {
			kind = Azure
		}
		return Destination{Kind: kind, Raw: raw, Container: container, Prefix: strings.Trim(prefix, "/")}, nil

	case "postgres", "postgresql":
		if _, err := url.Parse(raw); err != nil {
			return Destination{}, fmt.Errorf("destination %q is not a valid connection URL: %v: %w", redact(raw), err, dsdist.ErrValidation)
		}
		return Destination{Kind: Catalog, Raw: raw}, nil
	}

	return Destination{}, fmt.Errorf("destination scheme %q is not supported: %w", scheme, dsdist.ErrValidation)
}

// String returns the destination with any password removed.
func (d Destination) String() string {
	if d.Kind == Local && d.Raw == "" {
		return "local build"
	}
	return redact(d.Raw)
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
