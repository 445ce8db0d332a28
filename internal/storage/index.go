/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chambermap/internal/chamber"
	"chambermap/internal/domain"
	applog "chambermap/internal/log"
	"chambermap/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-plan ephemeral/index data under the plan root.
	IndexDirName  = ".cmap"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// IndexPath returns the full path to the plan's embedded index database file.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-plan SQLite index exists at .cmap/index.sqlite,
// opens the database, enables WAL mode, and ensures the meta/version tables exist.
// The returned *sql.DB is ready for use. Callers may close it when no longer needed.
func InitOrOpenIndex(root string) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(applog.ContextWithPlan(context.Background(), root), 5*time.Second)
	defer cancel()
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init")
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("plan root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, IndexDirName), 0o755); err != nil {
		l.ErrorContext(ctx, "create .cmap dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .cmap dir: %w", err)
	}

	path := IndexPath(root)
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.ErrorContext(ctx, "sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.ErrorContext(ctx, "enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.ErrorContext(ctx, "ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.ErrorContext(ctx, "ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.ErrorContext(ctx, "run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.DebugContext(ctx, "index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			// v1 indexes lacked bounding-box and name lookups
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_chambers_bbox ON chambers(min_x, max_x, min_y, max_y);`,
				`CREATE INDEX IF NOT EXISTS idx_chambers_name ON chambers(name COLLATE NOCASE);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates the chamber table and its FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// One row per chamber; bbox and label are NULL for chambers without walls.
		`CREATE TABLE IF NOT EXISTS chambers (
			id         INTEGER PRIMARY KEY,
			name       TEXT    NOT NULL,
			notes      TEXT    NOT NULL DEFAULT '',
			hidden     INTEGER NOT NULL DEFAULT 0,
			wall_count INTEGER NOT NULL,
			area       REAL    NOT NULL DEFAULT 0,
			min_x      INTEGER,
			min_y      INTEGER,
			max_x      INTEGER,
			max_y      INTEGER,
			label_x    REAL,
			label_y    REAL
		);`,
		// External-content FTS5 index over names and notes.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_chambers USING fts5(
			name,
			notes,
			content='chambers',
			content_rowid='id',
			tokenize = 'unicode61'
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chambers_bbox ON chambers(min_x, max_x, min_y, max_y);`,
		`CREATE INDEX IF NOT EXISTS idx_chambers_name ON chambers(name COLLATE NOCASE);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS chambers_ai AFTER INSERT ON chambers BEGIN
			INSERT INTO fts_chambers(rowid, name, notes) VALUES (new.id, new.name, new.notes);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS chambers_ad AFTER DELETE ON chambers BEGIN
			INSERT INTO fts_chambers(fts_chambers, rowid, name, notes) VALUES ('delete', old.id, old.name, old.notes);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS chambers_au AFTER UPDATE ON chambers BEGIN
			INSERT INTO fts_chambers(fts_chambers, rowid, name, notes) VALUES ('delete', old.id, old.name, old.notes);
			INSERT INTO fts_chambers(rowid, name, notes) VALUES (new.id, new.name, new.notes);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and rebuilds the index if needed.
// It returns true when a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, root string, plan domain.Plan) (bool, error) {
	ctx = applog.ContextWithPlan(ctx, root)
	path := IndexPath(root)
	db, err := InitOrOpenIndex(root)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, root, plan); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM chambers LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	applog.WithOperation(applog.WithComponent("storage"), "index_check").WarnContext(ctx, "index unhealthy, rebuilding", slog.String("check", chk))
	_ = db.Close()
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, root, plan); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup in .cmap/backups.
func backupIndexFile(indexPath string) {
	bak := filepath.Join(filepath.Dir(indexPath), BackupsDirName, filepath.Base(indexPath)+"."+backupStamp(time.Now())+manifestBakSuffix)
	_ = copyFile(indexPath, bak)
}

// BuildIndexIfEmpty ensures the DB exists and, if the chambers table is empty, populates it from the plan.
func BuildIndexIfEmpty(ctx context.Context, root string, plan domain.Plan) error {
	ctx = applog.ContextWithPlan(ctx, root)
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chambers;").Scan(&cnt); err != nil {
		return fmt.Errorf("check chambers count: %w", err)
	}
	if cnt > 0 {
		return nil // already built
	}
	return rebuildChambersFromPlan(ctx, db, plan)
}

// UpdateIndex replaces the chamber rows with the content of the plan.
func UpdateIndex(ctx context.Context, root string, plan domain.Plan) error {
	ctx = applog.ContextWithPlan(ctx, root)
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	return rebuildChambersFromPlan(ctx, db, plan)
}

// RebuildIndex drops and recreates the chamber tables and rebuilds content from the manifest.
// It preserves meta/version tables.
func RebuildIndex(ctx context.Context, root string, plan domain.Plan) error {
	ctx = applog.ContextWithPlan(ctx, root)
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TRIGGER IF EXISTS chambers_ai;",
		"DROP TRIGGER IF EXISTS chambers_ad;",
		"DROP TRIGGER IF EXISTS chambers_au;",
		"DROP TABLE IF EXISTS fts_chambers;",
		"DROP TABLE IF EXISTS chambers;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	return rebuildChambersFromPlan(ctx, db, plan)
}

// rebuildChambersFromPlan replaces the chambers table content from the given plan.
// Chambers that fail validation are skipped and logged.
func rebuildChambersFromPlan(ctx context.Context, db *sql.DB, plan domain.Plan) error {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_rebuild")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chambers;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear chambers: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO chambers(id, name, notes, hidden, wall_count, area, min_x, min_y, max_x, max_y, label_x, label_y)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, rec := range plan.Chambers {
		c, err := chamber.FromRecord(rec)
		if err != nil {
			applog.WithChamber(l, rec.ID).WarnContext(ctx, "skipping invalid chamber", slog.Any("err", err))
			continue
		}
		var minX, minY, maxX, maxY sql.NullInt64
		if box, ok := c.BoundingBox(); ok {
			minX = sql.NullInt64{Int64: int64(box.Min.X), Valid: true}
			minY = sql.NullInt64{Int64: int64(box.Min.Y), Valid: true}
			maxX = sql.NullInt64{Int64: int64(box.Max.X), Valid: true}
			maxY = sql.NullInt64{Int64: int64(box.Max.Y), Valid: true}
		}
		var lx, ly sql.NullFloat64
		if p, ok := c.LabelAnchor(); ok {
			lx = sql.NullFloat64{Float64: p.X, Valid: true}
			ly = sql.NullFloat64{Float64: p.Y, Valid: true}
		}
		if _, err := ins.ExecContext(ctx, int64(c.ID), c.Name, c.Notes, c.Hidden, c.WallCount(), c.Area(), minX, minY, maxX, maxY, lx, ly); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chamber %d: %w", c.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
