// Package packager selects the packaging backend for a destination.
package packager

import (
	"context"
	"fmt"

	"github.com/vvka-141/dsdist/internal/config"
	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/packager/azstore"
	"github.com/vvka-141/dsdist/internal/packager/catalog"
	"github.com/vvka-141/dsdist/internal/packager/destination"
	"github.com/vvka-141/dsdist/internal/packager/local"
	"github.com/vvka-141/dsdist/internal/packager/objectstore"
	"github.com/vvka-141/dsdist/internal/packager/s3store"
	"github.com/vvka-141/dsdist/internal/retry"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Options configures every backend the router can build.
type Options struct {
	BuildDir string // local builds ("" = dsdist.DefaultBuildDir)
	Retries  int    // retry attempts per transfer (<0 = default)
	S3       s3store.Options
	Azure    azstore.Options
	Catalog  catalog.Auth
}

// OptionsFromConfig extracts router options from a project config.
func OptionsFromConfig(cfg *config.ProjectConfig) (Options, error) {
	method, err := catalog.ParseAuthMethod(cfg.Storage.Catalog.Auth)
	if err != nil {
		return Options{}, err
	}
	return Options{
		BuildDir: cfg.Push.BuildDir,
		Retries:  cfg.Retries(),
		S3: s3store.Options{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		},
		Azure: azstore.Options{
			AccountURL:  cfg.Storage.Azure.AccountURL,
			AccountName: cfg.Storage.Azure.AccountName,
			AccountKey:  cfg.Storage.Azure.AccountKey,
		},
		Catalog: catalog.Auth{
			Method:            method,
			AWSRegion:         cfg.Storage.Catalog.AWSRegion,
			GoogleInstance:    cfg.Storage.Catalog.GoogleInstance,
			AzureTenantID:     cfg.Storage.Catalog.AzureTenantID,
			AzureClientID:     cfg.Storage.Catalog.AzureClientID,
			AzureClientSecret: cfg.Storage.Catalog.AzureClientSecret,
		},
	}, nil
}

// Router builds a packager per destination kind. Clients are created on
// demand, so a local build never touches cloud credentials.
type Router struct {
	opts   Options
	fsys   filesystem.WritableFileSystem
	logger dsdist.Logger

	newS3       func(ctx context.Context, opts s3store.Options) (s3store.API, error)
	newAzure    func(opts azstore.Options) (azstore.API, error)
	openCatalog func(ctx context.Context, dsn string, a catalog.Auth) (*catalog.Database, error)
}

// NewRouter creates a router reading entry files and writing local builds
// through fsys.
func NewRouter(opts Options, fsys filesystem.WritableFileSystem, logger dsdist.Logger) *Router {
	return &Router{
		opts:   opts,
		fsys:   fsys,
		logger: logger,
		newS3: func(ctx context.Context, o s3store.Options) (s3store.API, error) {
			return s3store.NewClient(ctx, o)
		},
		newAzure: func(o azstore.Options) (azstore.API, error) {
			return azstore.NewClient(o)
		},
		openCatalog: catalog.Open,
	}
}

// Resolve returns the packager for dest.
func (r *Router) Resolve(ctx context.Context, dest destination.Destination) (dsdist.Packager, error) {
	logger := logging.WithPrefix(r.logger, dest.Kind.String())
	switch dest.Kind {
	case destination.Local:
		dir := dest.Dir
		if dir == "" {
			dir = r.opts.BuildDir
		}
		return local.New(dir, r.fsys, logger), nil

	case destination.S3:
		api, err := r.newS3(ctx, r.opts.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 backend: %w: %w", dsdist.ErrInvalidConfig, err)
		}
		return objectstore.NewPublisher(s3store.New(api, dest.Container), dest, r.fsys, r.executor(), logger), nil

	case destination.Azure:
		serviceURL, err := r.opts.Azure.ServiceURL()
		if err != nil {
			return nil, fmt.Errorf("azure backend: %w", err)
		}
		api, err := r.newAzure(r.opts.Azure)
		if err != nil {
			return nil, fmt.Errorf("azure backend: %w: %w", dsdist.ErrInvalidConfig, err)
		}
		return objectstore.NewPublisher(azstore.New(api, serviceURL, dest.Container), dest, r.fsys, r.executor(), logger), nil

	case destination.Catalog:
		return r.Catalog(ctx, dest)
	}
	return nil, fmt.Errorf("no backend for %s: %w", dest.Kind, dsdist.ErrValidation)
}

// Catalog opens the catalog at dest. The caller closes the packager.
func (r *Router) Catalog(ctx context.Context, dest destination.Destination) (*catalog.Packager, error) {
	if dest.Kind != destination.Catalog {
		return nil, fmt.Errorf("%s is not a catalog destination: %w", dest, dsdist.ErrInvalidConfig)
	}
	db, err := r.openCatalog(ctx, dest.Raw, r.opts.Catalog)
	if err != nil {
		return nil, err
	}
	return catalog.New(db, dest, r.executor(), logging.WithPrefix(r.logger, dest.Kind.String())), nil
}

func (r *Router) executor() *retry.Executor {
	return retry.NewUploadExecutor(r.opts.Retries)
}
