package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	_ "modernc.org/sqlite"

	"skill-installer/internal/ports"
	"skill-installer/internal/types"
)

// ManifestSQLiteAdapter keeps the manifest in a local SQLite database.
type ManifestSQLiteAdapter struct {
	Path string

	db *sql.DB
	mu sync.Mutex
}

func OpenManifestSQLiteAdapter(path string) (*ManifestSQLiteAdapter, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if strings.TrimSpace(path) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create manifest directory").
			WithCause(err)
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open manifest database").
			WithCause(err)
	}
	// Single-process local DB; one connection keeps writes ordered.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS skill_manifest (
  name TEXT PRIMARY KEY,
  beta INTEGER NOT NULL DEFAULT 0,
  manual_install INTEGER NOT NULL DEFAULT 0,
  devices TEXT NOT NULL DEFAULT '[]',
  updated_at TEXT NOT NULL DEFAULT ''
)`); err != nil {
		_ = db.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to initialize manifest schema").
			WithCause(err)
	}
	return &ManifestSQLiteAdapter{Path: p, db: db}, nil
}

func (a *ManifestSQLiteAdapter) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *ManifestSQLiteAdapter) Load(ctx context.Context) (types.Manifest, error) {
	rows, err := a.db.QueryContext(ctx, `
SELECT name, beta, manual_install, devices, updated_at
FROM skill_manifest
ORDER BY name ASC
`)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to query manifest").
			WithCause(err)
	}
	defer rows.Close()

	manifest := types.Manifest{}
	for rows.Next() {
		var entry types.ManifestEntry
		var beta, manual int
		var devices string
		if err := rows.Scan(&entry.Name, &beta, &manual, &devices, &entry.UpdatedAt); err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read manifest row").
				WithCause(err)
		}
		entry.UpdatedAt = canonicalTimestamp(entry.UpdatedAt)
		entry.Beta = beta != 0
		entry.ManualInstall = manual != 0
		if devices != "" {
			if err := json.Unmarshal([]byte(devices), &entry.Devices); err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("invalid manifest devices").
					WithCause(err)
			}
		}
		manifest[entry.Name] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read manifest").
			WithCause(err)
	}
	return manifest, nil
}

// Save replaces the stored manifest in one transaction.
func (a *ManifestSQLiteAdapter) Save(ctx context.Context, manifest types.Manifest) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to begin manifest transaction").
			WithCause(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM skill_manifest`); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clear manifest").
			WithCause(err)
	}
	for _, entry := range manifest.Entries() {
		devices, err := json.Marshal(entry.Devices)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode manifest devices").
				WithCause(err)
		}
		if entry.Devices == nil {
			devices = []byte("[]")
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO skill_manifest(name, beta, manual_install, devices, updated_at)
VALUES(?, ?, ?, ?, ?)
`, entry.Name, boolToInt(entry.Beta), boolToInt(entry.ManualInstall), string(devices), entry.UpdatedAt); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to write manifest entry").
				WithCause(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to commit manifest").
			WithCause(err)
	}
	return nil
}

func (a *ManifestSQLiteAdapter) Lock(ctx context.Context) (func(), error) {
	return lockManifest(ctx, &a.mu, a.Path)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

var _ ports.ManifestStorePort = (*ManifestSQLiteAdapter)(nil)
