package destination

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Destination
	}{
		{"", Destination{Kind: Local}},
		{"file:///srv/builds", Destination{Kind: Local, Raw: "file:///srv/builds", Dir: "/srv/builds"}},
		{"file://out", Destination{Kind: Local, Raw: "file://out", Dir: "out"}},
		{"s3://bucket", Destination{Kind: S3, Raw: "s3://bucket", Container: "bucket"}},
		{"s3://bucket/a/b/", Destination{Kind: S3, Raw: "s3://bucket/a/b/", Container: "bucket", Prefix: "a/b"}},
		{"az://datasets/cells", Destination{Kind: Azure, Raw: "az://datasets/cells", Container: "datasets", Prefix: "cells"}},
		{"postgres://u@db:5432/catalog", Destination{Kind: Catalog, Raw: "postgres://u@db:5432/catalog"}},
		{"postgresql://db/catalog", Destination{Kind: Catalog, Raw: "postgresql://db/catalog"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Kind != Local, got.Remote())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, raw := range []string{"bucket/prefix", "ftp://host/x", "s3://", "az:///x", "file://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.True(t, errors.Is(err, dsdist.ErrValidation), "got %v", err)
		})
	}
}

func TestDestination_Key(t *testing.T) {
	d := Destination{Kind: S3, Container: "b", Prefix: "datasets"}
	assert.Equal(t, "datasets/cells/rev/manifest.json", d.Key("cells", "rev", "manifest.json"))
	assert.Equal(t, "x/y", Destination{}.Key("/x/", "", "y"))
}

func TestDestination_StringRedactsPassword(t *testing.T) {
	d, err := Parse("postgres://user:secret@db/catalog")
	require.NoError(t, err)
	assert.NotContains(t, d.String(), "secret")
	assert.Contains(t, d.String(), "user")
	assert.Equal(t, "local build", Destination{}.String())
}
