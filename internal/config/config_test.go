/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMissingYieldsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Grid.CellSize != Defaults().Grid.CellSize || cfg.Label.SampleCell != 1 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	cfg := Defaults()
	cfg.Grid.CellSize = 32
	cfg.Label.SampleCell = 2.5
	cfg.History.CoalesceMs = -1
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got.Grid.CellSize != 32 || got.Label.SampleCell != 2.5 || got.History.CoalesceMs != -1 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestConfigPathHonoursEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, want)
	got, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath error: %v", err)
	}
	if got != want {
		t.Fatalf("ConfigPath = %q, want %q", got, want)
	}
}

func TestEnvOverridesGridAndSnap(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(EnvGridCellSize, "40")
	t.Setenv(EnvSnapRadius, "1.5")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Grid.CellSize != 40 {
		t.Fatalf("Grid.CellSize = %v, want 40", cfg.Grid.CellSize)
	}
	if cfg.Snap.WallRadius != 1.5 || cfg.Snap.CornerRadius != 1.5 {
		t.Fatalf("snap radii not overridden: %#v", cfg.Snap)
	}
}

func TestEnvOverrideIgnoresGarbage(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(EnvLabelSample, "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Label.SampleCell != 1 {
		t.Fatalf("garbage override should be ignored, got %v", cfg.Label.SampleCell)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/chm.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/chm.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/chm.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/chm.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	_ = os.Unsetenv(EnvExportFormat)
	if _, ok := EnvOverrideFor("export.format"); ok {
		t.Fatalf("expected no override when env unset")
	}
	t.Setenv(EnvExportFormat, "pdf")
	if name, ok := EnvOverrideFor("export.format"); !ok || name != EnvExportFormat {
		t.Fatalf("EnvOverrideFor = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("unknown.key"); ok {
		t.Fatalf("unknown key should not report an override")
	}
}
