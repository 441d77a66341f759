package packager

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/dsdist/internal/config"
	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/packager/azstore"
	"github.com/vvka-141/dsdist/internal/packager/catalog"
	"github.com/vvka-141/dsdist/internal/packager/destination"
	"github.com/vvka-141/dsdist/internal/packager/local"
	"github.com/vvka-141/dsdist/internal/packager/objectstore"
	"github.com/vvka-141/dsdist/internal/packager/s3store"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

type nopS3 struct{}

func (nopS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func newTestRouter(opts Options) *Router {
	r := NewRouter(opts, filesystem.NewMemoryFileSystem("/"), logging.NewNullLogger())
	r.newS3 = func(context.Context, s3store.Options) (s3store.API, error) { return nopS3{}, nil }
	return r
}

func mustParse(t *testing.T, raw string) destination.Destination {
	t.Helper()
	d, err := destination.Parse(raw)
	require.NoError(t, err)
	return d
}

func TestResolve_Local(t *testing.T) {
	r := newTestRouter(Options{BuildDir: "out"})

	for _, raw := range []string{"", "file:///tmp/datasets"} {
		p, err := r.Resolve(context.Background(), mustParse(t, raw))
		require.NoError(t, err)
		assert.IsType(t, &local.Packager{}, p)
	}
}

func TestResolve_S3(t *testing.T) {
	r := newTestRouter(Options{})

	p, err := r.Resolve(context.Background(), mustParse(t, "s3://bucket/prefix"))
	require.NoError(t, err)
	assert.IsType(t, &objectstore.Publisher{}, p)
}

func TestResolve_S3ClientError(t *testing.T) {
	r := newTestRouter(Options{})
	r.newS3 = func(context.Context, s3store.Options) (s3store.API, error) { return nil, errors.New("no credentials") }

	_, err := r.Resolve(context.Background(), mustParse(t, "s3://bucket"))
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)
}

func TestResolve_Azure(t *testing.T) {
	r := newTestRouter(Options{Azure: azstore.Options{AccountName: "acct"}})
	var got azstore.Options
	r.newAzure = func(o azstore.Options) (azstore.API, error) {
		got = o
		return nil, nil
	}

	p, err := r.Resolve(context.Background(), mustParse(t, "az://container/prefix"))
	require.NoError(t, err)
	assert.IsType(t, &objectstore.Publisher{}, p)
	assert.Equal(t, "acct", got.AccountName)
}

func TestResolve_AzureWithoutAccount(t *testing.T) {
	r := newTestRouter(Options{})

	_, err := r.Resolve(context.Background(), mustParse(t, "az://container"))
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)
}

func TestResolve_Catalog(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)

	r := newTestRouter(Options{})
	var dsn string
	r.opts.Catalog = catalog.Auth{Method: catalog.AuthAzureEntra}
	var method catalog.AuthMethod
	r.openCatalog = func(_ context.Context, raw string, a catalog.Auth) (*catalog.Database, error) {
		dsn = raw
		method = a.Method
		return &catalog.Database{DB: db}, nil
	}

	p, err := r.Resolve(context.Background(), mustParse(t, "postgres://u:p@db/catalog"))
	require.NoError(t, err)
	require.IsType(t, &catalog.Packager{}, p)
	assert.Equal(t, "postgres://u:p@db/catalog", dsn)
	assert.Equal(t, catalog.AuthAzureEntra, method)
	require.NoError(t, p.(*catalog.Packager).Close())
}

func TestCatalog_RejectsOtherKinds(t *testing.T) {
	r := newTestRouter(Options{})

	_, err := r.Catalog(context.Background(), mustParse(t, "s3://bucket"))
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)
}

func TestOptionsFromConfig(t *testing.T) {
	retries := 7
	cfg := &config.ProjectConfig{
		Push: config.PushConfig{BuildDir: "/builds", RetryAttempts: &retries},
		Storage: config.StorageConfig{
			S3:    config.S3Config{Region: "eu-west-1", Endpoint: "http://minio:9000", UsePathStyle: true},
			Azure:   config.AzureConfig{AccountName: "acct", AccountKey: "a2V5"},
			Catalog: config.CatalogConfig{Auth: "aws-iam", AWSRegion: "us-east-2"},
		},
	}

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, Options{
		BuildDir: "/builds",
		Retries:  7,
		S3:       s3store.Options{Region: "eu-west-1", Endpoint: "http://minio:9000", UsePathStyle: true},
		Azure:    azstore.Options{AccountName: "acct", AccountKey: "a2V5"},
		Catalog:  catalog.Auth{Method: catalog.AuthAWSIAM, AWSRegion: "us-east-2"},
	}, opts)
}

func TestOptionsFromConfig_UnknownCatalogAuth(t *testing.T) {
	cfg := &config.ProjectConfig{Storage: config.StorageConfig{Catalog: config.CatalogConfig{Auth: "ldap"}}}

	_, err := OptionsFromConfig(cfg)
	assert.ErrorIs(t, err, dsdist.ErrInvalidConfig)
}
