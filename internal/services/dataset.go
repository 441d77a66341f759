package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/dsdist/internal/aggregate"
	"github.com/vvka-141/dsdist/internal/checksum"
	"github.com/vvka-141/dsdist/internal/files/filesystem"
	"github.com/vvka-141/dsdist/internal/logging"
	"github.com/vvka-141/dsdist/internal/naming"
	"github.com/vvka-141/dsdist/internal/packager/destination"
	"github.com/vvka-141/dsdist/internal/planner"
	"github.com/vvka-141/dsdist/internal/readme"
	"github.com/vvka-141/dsdist/internal/schema"
	"github.com/vvka-141/dsdist/internal/table"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// PackagerResolver returns the packaging backend for a parsed destination.
type PackagerResolver interface {
	Resolve(ctx context.Context, dest destination.Destination) (dsdist.Packager, error)
}

// Dataset is a table plus everything needed to distribute it: schema,
// README and the collaborators that push the result.
//
// Thread-Safety: NOT safe for concurrent use. Setters must not run while
// Distribute is in flight.
type Dataset struct {
	name  string
	owner string

	table  *table.Table
	schema schema.Schema
	readme *readme.Document

	fsys        filesystem.FileSystemProvider
	logger      dsdist.Logger
	approver    dsdist.Approver
	packagers   PackagerResolver
	checksums   checksum.Calculator
	now         func() time.Time
	newRevision func() uuid.UUID
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithFileSystem sets the filesystem used to load the table, README and supporting files.
func WithFileSystem(fsys filesystem.FileSystemProvider) Option {
	return func(d *Dataset) { d.fsys = fsys }
}

// WithLogger sets the logger.
func WithLogger(logger dsdist.Logger) Option {
	return func(d *Dataset) { d.logger = logger }
}

// WithApprover sets the approver consulted before pushing to a remote destination.
// Without one, remote pushes proceed without confirmation.
func WithApprover(approver dsdist.Approver) Option {
	return func(d *Dataset) { d.approver = approver }
}

// WithPackagers sets how destinations map to packaging backends.
func WithPackagers(resolver PackagerResolver) Option {
	return func(d *Dataset) { d.packagers = resolver }
}

// WithClock sets the time source used for package timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dataset) { d.now = now }
}

// WithRevisionSource sets the generator of package revision ids.
func WithRevisionSource(next func() uuid.UUID) Option {
	return func(d *Dataset) { d.newRevision = next }
}

// NewDataset validates name, reads the README at readmePath and loads src,
// which is a table file path or a *table.Table.
//
// Errors wrap dsdist.ErrValidation for a malformed name, dsdist.ErrNotFound
// or dsdist.ErrIsADirectory for a bad README or table path, and
// dsdist.ErrInvalidType for an unsupported table source.
func NewDataset(src interface{}, name, owner, readmePath string, opts ...Option) (*Dataset, error) {
	d := &Dataset{
		name:        name,
		owner:       owner,
		fsys:        filesystem.NewOSFileSystem(),
		logger:      logging.NewNullLogger(),
		checksums:   checksum.New(),
		now:         time.Now,
		newRevision: uuid.New,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := naming.Validate(name); err != nil {
		return nil, err
	}

	doc, err := readme.New(d.fsys, name, owner, readmePath)
	if err != nil {
		return nil, err
	}
	d.readme = doc

	tbl, err := table.Load(d.fsys, src)
	if err != nil {
		return nil, err
	}
	d.table = tbl
	d.schema = schema.New(tbl.Columns())

	d.logger.Verbose("Loaded table with %d rows and %d columns", tbl.Len(), len(tbl.Columns()))
	return d, nil
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Table returns the loaded table.
func (d *Dataset) Table() *table.Table { return d.table }

// Schema returns the current column configuration.
func (d *Dataset) Schema() schema.Schema { return d.schema }

// SetPathColumns replaces the path columns. On error the previous
// configuration is kept.
func (d *Dataset) SetPathColumns(cols ...string) error {
	next, err := d.schema.WithPathColumns(cols...)
	if err != nil {
		return err
	}
	d.schema = next
	return nil
}

// SetMetadataColumns replaces the metadata columns. On error the previous
// configuration is kept.
func (d *Dataset) SetMetadataColumns(cols ...string) error {
	next, err := d.schema.WithMetadataColumns(cols...)
	if err != nil {
		return err
	}
	d.schema = next
	return nil
}

// SetColumnLabels replaces the path column labels. On error the previous
// configuration is kept.
func (d *Dataset) SetColumnLabels(labels map[string]string) error {
	next, err := d.schema.WithColumnLabels(labels)
	if err != nil {
		return err
	}
	d.schema = next
	return nil
}

// SetSupportingFiles replaces the supporting files. On error the previous
// configuration is kept.
func (d *Dataset) SetSupportingFiles(files schema.SupportingFiles) error {
	next, err := d.schema.WithSupportingFiles(d.fsys, files)
	if err != nil {
		return err
	}
	d.schema = next
	return nil
}

// AddUsageDoc adds a usage link or paragraph to the README.
func (d *Dataset) AddUsageDoc(doc string) { d.readme.AddUsageDoc(doc) }

// AddLicenseDoc adds a license link or paragraph to the README.
func (d *Dataset) AddLicenseDoc(doc string) { d.readme.AddLicenseDoc(doc) }

// Plan returns the grouping plan of the current schema.
func (d *Dataset) Plan() (planner.Plan, error) {
	return planner.Build(d.schema)
}

// Build computes the manifest from scratch. Nothing is cached between calls.
func (d *Dataset) Build() (*aggregate.Manifest, error) {
	plan, err := planner.Build(d.schema)
	if err != nil {
		return nil, err
	}
	return aggregate.Build(d.fsys, d.table, d.schema, plan)
}

// Assemble builds the manifest once and turns it into a package: rendered
// README, metadata snapshot and checksummed entries. Nothing is pushed.
func (d *Dataset) Assemble(message string) (*dsdist.Package, error) {
	manifest, err := d.Build()
	if err != nil {
		return nil, err
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}

	var snapshot bytes.Buffer
	if err := d.table.WriteCSV(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", dsdist.MetadataSnapshotEntry, err)
	}

	entries := manifest.Entries()
	if err := checksum.Entries(d.checksums, d.fsys, entries); err != nil {
		return nil, err
	}

	return &dsdist.Package{
		Name:        d.name,
		Slug:        naming.Slug(d.name),
		Owner:       d.owner,
		Message:     message,
		Revision:    d.newRevision(),
		Created:     d.now().UTC(),
		Labels:      manifest.Keys(),
		Entries:     entries,
		Manifest:    manifestJSON,
		Readme:      d.readme.Render(),
		MetadataCSV: snapshot.Bytes(),
	}, nil
}

// Distribute assembles the package and pushes it to rawDestination ("" for
// a local build). Remote destinations need the approver's consent first.
//
// Schema and reduction errors are returned as produced, so errors.Is
// matches dsdist.ErrValidation and dsdist.ErrInvalidType. Backend failures
// wrap dsdist.ErrPushFailed.
func (d *Dataset) Distribute(ctx context.Context, rawDestination, message string) (dsdist.PackageHandle, error) {
	dest, err := destination.Parse(rawDestination)
	if err != nil {
		return dsdist.PackageHandle{}, err
	}
	if d.packagers == nil {
		return dsdist.PackageHandle{}, fmt.Errorf("no packaging backend configured: %w", dsdist.ErrInvalidConfig)
	}

	pkg, err := d.Assemble(message)
	if err != nil {
		return dsdist.PackageHandle{}, err
	}
	d.logger.Verbose("Assembled %d entries in %d groups", len(pkg.Entries), len(pkg.Labels))

	if dest.Remote() && d.approver != nil {
		approved, err := d.approver.RequestApproval(ctx, dsdist.Summarize(pkg, dest.String()))
		if err != nil {
			return dsdist.PackageHandle{}, fmt.Errorf("approval failed: %w", err)
		}
		if !approved {
			return dsdist.PackageHandle{}, fmt.Errorf("push of %q to %s: %w", d.name, dest, dsdist.ErrPushDenied)
		}
	}

	backend, err := d.packagers.Resolve(ctx, dest)
	if err != nil {
		return dsdist.PackageHandle{}, err
	}
	if c, ok := backend.(io.Closer); ok {
		defer c.Close()
	}

	handle, err := backend.Push(ctx, pkg, rawDestination)
	if err != nil {
		return dsdist.PackageHandle{}, fmt.Errorf("push to %s: %w: %w", dest, dsdist.ErrPushFailed, err)
	}

	d.logger.Info("✓ Distributed %s revision %s to %s", d.name, handle.Revision, dest)
	return handle, nil
}
