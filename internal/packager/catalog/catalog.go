// Package catalog records package revisions in a Postgres catalog. Files are
// not copied: the catalog keeps the manifest, README, metadata snapshot and
// one row per entry with its source path and checksum.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vvka-141/dsdist/internal/packager/bundle"
	"github.com/vvka-141/dsdist/internal/packager/destination"
	"github.com/vvka-141/dsdist/internal/retry"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Revision is a catalog row describing one pushed revision.
type Revision struct {
	Revision uuid.UUID
	Name     string
	Owner    string
	Message  string
	Created  time.Time
}

// Database is an open catalog handle.
type Database struct {
	DB     *sql.DB
	dialer *cloudsqlconn.Dialer
}

// Close closes the handle and releases the Cloud SQL dialer, if any.
func (d *Database) Close() error {
	err := d.DB.Close()
	if d.dialer != nil {
		if derr := d.dialer.Close(); err == nil {
			err = derr
		}
	}
	return err
}

// Packager writes revisions to a catalog database.
type Packager struct {
	db       *Database
	dest     destination.Destination
	executor *retry.Executor
	logger   dsdist.Logger
}

// Open returns a catalog handle for a postgres:// connection string,
// authenticated as a describes. No connection is made until the first query.
func Open(ctx context.Context, dsn string, a Auth) (*Database, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog connection string: %w: %w", dsdist.ErrInvalidConfig, err)
	}

	var opts []stdlib.OptionOpenDB
	provider, err := tokenProviderFor(a, cfg)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		opts = append(opts, stdlib.OptionBeforeConnect(newTokenSource(provider).beforeConnect))
	}

	var dialer *cloudsqlconn.Dialer
	if a.Method == AuthGoogleIAM {
		if dialer, err = useCloudSQLDialer(ctx, a.GoogleInstance, cfg); err != nil {
			return nil, err
		}
	}
	return &Database{DB: stdlib.OpenDB(*cfg, opts...), dialer: dialer}, nil
}

// New creates a catalog packager over db. The packager owns db and closes it
// in Close.
func New(db *Database, dest destination.Destination, executor *retry.Executor, logger dsdist.Logger) *Packager {
	if db == nil {
		panic("db cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	onRetry := func(attempt int, err error, delay time.Duration) {
		logger.Verbose("Catalog write attempt %d failed, retrying in %s: %v", attempt+1, delay, err)
	}
	return &Packager{
		db:       db,
		dest:     dest,
		executor: executor.WithOnRetry(onRetry),
		logger:   logger,
	}
}

// Close releases the database handle.
func (p *Packager) Close() error {
	return p.db.Close()
}

// Push records pkg in a single transaction. Either the revision and all of
// its entries are visible afterwards or nothing is.
func (p *Packager) Push(ctx context.Context, pkg *dsdist.Package, rawDestination string) (dsdist.PackageHandle, error) {
	rows, err := newRevisionRows(pkg)
	if err != nil {
		return dsdist.PackageHandle{}, err
	}

	err = p.executor.Execute(ctx, func(ctx context.Context) error {
		return p.record(ctx, rows)
	})
	if err != nil {
		return dsdist.PackageHandle{}, fmt.Errorf("failed to record revision %s: %w", pkg.Revision, err)
	}
	p.logger.Verbose("Recorded %d catalog entries for %s", len(rows.entries), pkg.Name)

	return dsdist.PackageHandle{
		Name:        pkg.Name,
		Revision:    pkg.Revision,
		Destination: rawDestination,
		Location:    p.dest.String() + "#" + bundle.RevisionDir(pkg),
		Keys:        pkg.Keys(),
	}, nil
}

// Latest returns the newest revision recorded for slug, or an error wrapping
// dsdist.ErrNotFound.
func (p *Packager) Latest(ctx context.Context, slug string) (Revision, error) {
	var (
		r  Revision
		id string
	)
	err := p.db.DB.QueryRowContext(ctx, latestRevisionSQL, slug).Scan(&id, &r.Name, &r.Owner, &r.Message, &r.Created)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, fmt.Errorf("no revision of %q in catalog: %w", slug, dsdist.ErrNotFound)
	}
	if err != nil {
		return Revision{}, fmt.Errorf("failed to query catalog: %w", err)
	}
	r.Revision, err = uuid.Parse(id)
	if err != nil {
		return Revision{}, fmt.Errorf("catalog returned invalid revision %q: %w", id, err)
	}
	return r, nil
}

type revisionRows struct {
	name     string
	slug     string
	revision []interface{}
	entries  [][]interface{}
}

func newRevisionRows(pkg *dsdist.Package) (revisionRows, error) {
	keys, err := json.Marshal(pkg.Keys())
	if err != nil {
		return revisionRows{}, fmt.Errorf("failed to encode keys: %w", err)
	}
	index, err := json.Marshal(bundle.NewIndex(pkg, nil))
	if err != nil {
		return revisionRows{}, fmt.Errorf("failed to encode %s: %w", bundle.IndexEntry, err)
	}

	id := pkg.Revision.String()
	rows := revisionRows{
		name: pkg.Name,
		slug: pkg.Slug,
		revision: []interface{}{
			id, pkg.Name, pkg.Slug, pkg.Owner, pkg.Message, pkg.Created,
			string(keys), string(pkg.Manifest), string(index), string(pkg.Readme), string(pkg.MetadataCSV),
		},
		entries: make([][]interface{}, 0, len(pkg.Entries)),
	}
	for i, e := range pkg.Entries {
		meta := e.Meta
		if meta == nil {
			meta = map[string]interface{}{}
		}
		encoded, err := json.Marshal(meta)
		if err != nil {
			return revisionRows{}, fmt.Errorf("failed to encode metadata of %s: %w", e.Path, err)
		}
		rows.entries = append(rows.entries, []interface{}{
			id, i, e.Label, e.Path, e.Checksum, e.SizeBytes, string(encoded),
		})
	}
	return rows, nil
}

func (p *Packager) record(ctx context.Context, rows revisionRows) (err error) {
	tx, err := p.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range schemaStatements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare catalog schema: %w", err)
		}
	}
	if err = checkSlugOwner(ctx, tx, rows.slug, rows.name); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, insertRevisionSQL, rows.revision...); err != nil {
		return fmt.Errorf("failed to insert revision: %w", err)
	}
	for _, args := range rows.entries {
		if _, err = tx.ExecContext(ctx, insertEntrySQL, args...); err != nil {
			return fmt.Errorf("failed to insert entry %v: %w", args[3], err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit revision: %w", err)
	}
	return nil
}

// checkSlugOwner rejects a name whose slug is already taken by another name,
// such as "Cell Atlas" after "cell_atlas".
func checkSlugOwner(ctx context.Context, tx *sql.Tx, slug, name string) error {
	var existing string
	err := tx.QueryRowContext(ctx, conflictingNameSQL, slug, name).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check catalog for %q: %w", slug, err)
	}
	return fmt.Errorf("dataset %q maps to %q, already used by %q: %w", name, slug, existing, dsdist.ErrValidation)
}
