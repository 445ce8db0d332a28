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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"chambermap/internal/domain"
	applog "chambermap/internal/log"
)

const (
	ManifestFileName = "plan.json"
	BackupsDirName   = "backups"
	ExportsDirName   = "exports"
)

// Backup file naming inside <root>/backups. Manifest backups sort by stamp;
// crash snapshots never take part in Open's fallback.
const (
	backupStampLayout = "20060102-150405.000"
	manifestBakSuffix = ".bak"
	crashInfix        = ".crash-"
)

// ProjectHandle ties a decoded plan to its directory on disk.
type ProjectHandle struct {
	Root         string
	ManifestPath string
	Plan         domain.Plan
}

// InitProject scaffolds a plan directory at root, writes plan.json and
// builds the search index. An index failure is logged, not returned.
func InitProject(root string, plan domain.Plan) (*ProjectHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	ph := &ProjectHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName), Plan: plan}
	if err := Save(ph); err != nil {
		return nil, err
	}
	ctx, l := planScope(root, "init")
	if err := BuildIndexIfEmpty(ctx, root, plan); err != nil {
		l.WarnContext(ctx, "initial index build failed", slog.Any("err", err))
	}
	l.InfoContext(ctx, "plan created", slog.String("name", plan.Name))
	return ph, nil
}

// Open loads plan.json from root. A missing or undecodable manifest falls
// back to the newest manifest backup.
func Open(root string) (*ProjectHandle, error) {
	ctx, l := planScope(root, "open")
	mpath := filepath.Join(root, ManifestFileName)
	plan, err := readPlan(mpath)
	if err != nil {
		l.WarnContext(ctx, "manifest unusable, trying backup", slog.Any("err", err))
		bplan, bpath, berr := latestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		l.InfoContext(ctx, "plan restored from backup", slog.String("backup", filepath.Base(bpath)))
		plan = bplan
	}
	l.InfoContext(ctx, "plan opened",
		slog.String("name", plan.Name),
		slog.Int("chambers", len(plan.Chambers)),
		slog.Int("doors", len(plan.Doors)),
	)
	return &ProjectHandle{Root: root, ManifestPath: mpath, Plan: plan}, nil
}

// Save replaces plan.json atomically after copying the previous manifest
// into backups/.
func Save(ph *ProjectHandle) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	if ph.Root == "" || ph.ManifestPath == "" {
		return errors.New("invalid ProjectHandle: missing paths")
	}
	data, err := encodePlan(ph.Plan)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	bak, err := backupManifest(ph)
	if err != nil {
		return fmt.Errorf("backup current manifest: %w", err)
	}
	if err := replaceFile(ph.ManifestPath, data); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	ctx, l := planScope(ph.Root, "save")
	l.DebugContext(ctx, "plan saved",
		slog.Int("bytes", len(data)),
		slog.Int("chambers", len(ph.Plan.Chambers)),
		slog.String("backup", filepath.Base(bak)),
	)
	return nil
}

// SaveAs scaffolds newRoot, points the handle at it and saves there.
func SaveAs(ph *ProjectHandle, newRoot string) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	ph.Root = newRoot
	ph.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(ph)
}

// AutosaveCrashSnapshot writes the in-memory plan next to the backups without
// touching plan.json, so a half-applied edit never replaces the last good manifest.
func AutosaveCrashSnapshot(ph *ProjectHandle) (string, error) {
	if ph == nil || ph.Root == "" {
		return "", errors.New("invalid ProjectHandle: missing root")
	}
	data, err := encodePlan(ph.Plan)
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	bdir := filepath.Join(ph.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	path := filepath.Join(bdir, ManifestFileName+crashInfix+backupStamp(time.Now())+".json")
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	ctx, l := planScope(ph.Root, "autosave")
	l.WarnContext(ctx, "crash snapshot written", slog.String("path", path))
	return path, nil
}

// ManifestBackups lists the manifest backups of a plan, oldest first.
func ManifestBackups(root string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, manifestBakSuffix) {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func planScope(root, op string) (context.Context, *slog.Logger) {
	return applog.ContextWithPlan(context.Background(), root),
		applog.WithOperation(applog.WithComponent("storage"), op)
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create plan root: %w", err)
	}
	for _, d := range []string{ExportsDirName, BackupsDirName} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

func backupStamp(t time.Time) string { return t.Format(backupStampLayout) }

// backupManifest copies the current plan.json into backups/ and returns the
// backup path, or "" when there is no manifest yet.
func backupManifest(ph *ProjectHandle) (string, error) {
	if _, err := os.Stat(ph.ManifestPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	bpath := filepath.Join(ph.Root, BackupsDirName, ManifestFileName+"."+backupStamp(time.Now())+manifestBakSuffix)
	if err := copyFile(ph.ManifestPath, bpath); err != nil {
		return "", err
	}
	return bpath, nil
}

func encodePlan(p domain.Plan) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func readPlan(path string) (domain.Plan, error) {
	var p domain.Plan
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return p, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// latestBackup decodes the newest manifest backup.
func latestBackup(root string) (domain.Plan, string, error) {
	baks, err := ManifestBackups(root)
	if err != nil {
		return domain.Plan{}, "", err
	}
	if len(baks) == 0 {
		return domain.Plan{}, "", errors.New("no backups found")
	}
	latest := baks[len(baks)-1]
	p, err := readPlan(latest)
	return p, latest, err
}

// replaceFile writes data to a temp file beside path and renames it over path.
func replaceFile(path string, data []byte) error {
	temp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return err
	}
	// Windows rename does not replace an existing file
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return err
	}
	return nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
