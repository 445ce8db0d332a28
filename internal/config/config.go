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
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GridConfig struct {
	// CellSize is the rendered size of one grid unit (export pixels / points).
	CellSize float64 `yaml:"cell_size"`
	Unit     string  `yaml:"unit"` // informational, e.g. "ft" or "m"
}

type LabelConfig struct {
	// SampleCell is the label-anchor sampling step in grid units.
	SampleCell float64 `yaml:"sample_cell"`
}

type SnapConfig struct {
	WallRadius   float64 `yaml:"wall_radius"`
	CornerRadius float64 `yaml:"corner_radius"`
}

type HistoryConfig struct {
	MaxBytes      int `yaml:"max_bytes"`
	MaxPerChamber int `yaml:"max_per_chamber"`
	CoalesceMs    int `yaml:"coalesce_ms"`
}

type ExportConfig struct {
	Format    string `yaml:"format"` // svg | pdf | png
	ShowDoors bool   `yaml:"show_doors"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Grid          GridConfig    `yaml:"grid"`
	Label         LabelConfig   `yaml:"label"`
	Snap          SnapConfig    `yaml:"snap"`
	History       HistoryConfig `yaml:"history"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Grid:          GridConfig{CellSize: 20, Unit: "ft"},
		Label:         LabelConfig{SampleCell: 1},
		Snap:          SnapConfig{WallRadius: 0.5, CornerRadius: 0.75},
		History:       HistoryConfig{MaxBytes: 8 * 1024 * 1024, MaxPerChamber: 200, CoalesceMs: 0},
		Export:        ExportConfig{Format: "svg", ShowDoors: true},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath    = "CHM_CONFIG"
	EnvGridCellSize  = "CHM_GRID_CELL_SIZE"
	EnvLabelSample   = "CHM_LABEL_SAMPLE_CELL"
	EnvSnapRadius    = "CHM_SNAP_RADIUS"
	EnvHistoryBytes  = "CHM_HISTORY_MAX_BYTES"
	EnvExportFormat  = "CHM_EXPORT_FORMAT"
	EnvLogLevel      = "CHM_LOG_LEVEL"
	EnvLogFormat     = "CHM_LOG_FORMAT"
	EnvLogSource     = "CHM_LOG_SOURCE"
	EnvLogFile       = "CHM_LOG_FILE"
	defaultFileName  = "config.yaml"
	defaultDirLinux  = "chambermap"
	defaultDirOthers = "ChamberMap"
)

// ConfigPath returns the per-user config file path. CHM_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, defaultDirOthers)
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", defaultDirOthers)
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", defaultDirLinux)
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, defaultFileName), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing or unparsable file yields defaults.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Grid.CellSize > 0 {
		dst.Grid.CellSize = src.Grid.CellSize
	}
	if strings.TrimSpace(src.Grid.Unit) != "" {
		dst.Grid.Unit = strings.TrimSpace(src.Grid.Unit)
	}
	if src.Label.SampleCell > 0 {
		dst.Label.SampleCell = src.Label.SampleCell
	}
	if src.Snap.WallRadius > 0 {
		dst.Snap.WallRadius = src.Snap.WallRadius
	}
	if src.Snap.CornerRadius > 0 {
		dst.Snap.CornerRadius = src.Snap.CornerRadius
	}
	if src.History.MaxBytes != 0 {
		dst.History.MaxBytes = src.History.MaxBytes
	}
	if src.History.MaxPerChamber != 0 {
		dst.History.MaxPerChamber = src.History.MaxPerChamber
	}
	// coalesce_ms: negative disables coalescing, so any value from file counts
	dst.History.CoalesceMs = src.History.CoalesceMs
	if f := strings.ToLower(strings.TrimSpace(src.Export.Format)); f != "" {
		dst.Export.Format = f
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Export.ShowDoors = src.Export.ShowDoors
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvGridCellSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Grid.CellSize = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLabelSample)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Label.SampleCell = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapRadius)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Snap.WallRadius = f
			cfg.Snap.CornerRadius = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryBytes)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.MaxBytes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormat)); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "grid.cell_size":
		env = EnvGridCellSize
	case "label.sample_cell":
		env = EnvLabelSample
	case "snap.wall_radius", "snap.corner_radius":
		env = EnvSnapRadius
	case "history.max_bytes":
		env = EnvHistoryBytes
	case "export.format":
		env = EnvExportFormat
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
