package catalog

// schemaStatements create the catalog tables. Every statement is idempotent
// and runs inside the push transaction.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS dsdist`,
	`CREATE TABLE IF NOT EXISTS dsdist.package_revision (
	revision      uuid PRIMARY KEY,
	name          text NOT NULL,
	slug          text NOT NULL,
	owner         text NOT NULL DEFAULT '',
	message       text NOT NULL DEFAULT '',
	created_at    timestamptz NOT NULL,
	keys          jsonb NOT NULL,
	manifest      jsonb NOT NULL,
	package_index jsonb NOT NULL,
	readme        text NOT NULL,
	metadata_csv  text NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS package_revision_slug_idx
	ON dsdist.package_revision (slug, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS dsdist.package_entry (
	revision   uuid NOT NULL REFERENCES dsdist.package_revision (revision) ON DELETE CASCADE,
	ordinal    integer NOT NULL,
	label      text NOT NULL,
	path       text NOT NULL,
	sha256     text NOT NULL,
	size_bytes bigint NOT NULL,
	metadata   jsonb NOT NULL,
	PRIMARY KEY (revision, ordinal)
)`,
}

const insertRevisionSQL = `INSERT INTO dsdist.package_revision
	(revision, name, slug, owner, message, created_at, keys, manifest, package_index, readme, metadata_csv)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const insertEntrySQL = `INSERT INTO dsdist.package_entry
	(revision, ordinal, label, path, sha256, size_bytes, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const latestRevisionSQL = `SELECT revision, name, owner, message, created_at
	FROM dsdist.package_revision
	WHERE slug = $1
	ORDER BY created_at DESC
	LIMIT 1`

const conflictingNameSQL = `SELECT name
	FROM dsdist.package_revision
	WHERE slug = $1 AND name <> $2
	LIMIT 1`
