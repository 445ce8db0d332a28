/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor is the single dispatch point for edits to a plan. It
// serializes every mutation and query behind one mutex, records undo history
// per chamber and logs each operation.
package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chambermap/internal/chamber"
	"chambermap/internal/config"
	"chambermap/internal/domain"
	"chambermap/internal/geom"
	applog "chambermap/internal/log"
	"chambermap/internal/plan"
	"chambermap/internal/undo"
)

// Options tune the editor. Zero values fall back to the config defaults.
type Options struct {
	History      undo.Config
	SampleCell   float64
	WallRadius   float64
	CornerRadius float64
	// Now is the clock used to timestamp history; defaults to time.Now.
	Now func() time.Time
}

// OptionsFromConfig maps the user configuration onto editor options.
func OptionsFromConfig(cfg config.AppConfig) Options {
	return Options{
		History: undo.Config{
			MaxBytes:      cfg.History.MaxBytes,
			MaxPerChamber: cfg.History.MaxPerChamber,
			MinInterval:   time.Duration(cfg.History.CoalesceMs) * time.Millisecond,
		},
		SampleCell:   cfg.Label.SampleCell,
		WallRadius:   cfg.Snap.WallRadius,
		CornerRadius: cfg.Snap.CornerRadius,
	}
}

// Editor owns a plan and applies edits to it. It is safe for concurrent use.
type Editor struct {
	mu      sync.Mutex
	plan    *plan.Plan
	history *undo.Manager
	opts    Options
	log     *slog.Logger
	dirty   bool
}

// chamberState is the undo snapshot of one chamber.
type chamberState struct {
	Chamber domain.Chamber `json:"chamber"`
	Doors   []domain.Door  `json:"doors,omitempty"`
}

// New returns an editor over p.
func New(p *plan.Plan, opts Options) *Editor {
	d := config.Defaults()
	if opts.SampleCell <= 0 {
		opts.SampleCell = d.Label.SampleCell
	}
	if opts.WallRadius <= 0 {
		opts.WallRadius = d.Snap.WallRadius
	}
	if opts.CornerRadius <= 0 {
		opts.CornerRadius = d.Snap.CornerRadius
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Editor{
		plan:    p,
		history: undo.NewManager(opts.History),
		opts:    opts,
		log:     applog.WithComponent("editor"),
	}
}

// Document returns the persisted form of the current plan.
func (e *Editor) Document() domain.Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan.ToDomain()
}

// Dirty reports whether the plan changed since the last MarkClean.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// MarkClean resets the dirty flag, typically after a save.
func (e *Editor) MarkClean() {
	e.mu.Lock()
	e.dirty = false
	e.mu.Unlock()
}

// NewChamber adds an empty chamber. Creation is not part of chamber history.
func (e *Editor) NewChamber(name string) chamber.ChamberID {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.plan.AddChamber(name)
	e.dirty = true
	applog.WithChamber(applog.WithOperation(e.log, "new_chamber"), uint32(c.ID)).Info("chamber created", slog.String("name", name))
	return c.ID
}

// RemoveChamber deletes a chamber together with its history.
func (e *Editor) RemoveChamber(id chamber.ChamberID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.plan.RemoveChamber(id); err != nil {
		return err
	}
	e.history.ClearChamber(uint32(id))
	e.dirty = true
	applog.WithChamber(applog.WithOperation(e.log, "remove_chamber"), uint32(id)).Info("chamber removed")
	return nil
}

// PlaceVertex appends v to the chamber, or splits wall split at v when split is set.
func (e *Editor) PlaceVertex(id chamber.ChamberID, v geom.IVec, split *chamber.WallID) error {
	if split != nil {
		_, err := e.SplitWall(id, *split, v)
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutate(id, "append", func() error {
		return e.plan.Append(id, v)
	}, slog.Int("x", int(v.X)), slog.Int("y", int(v.Y)))
}

// SplitWall splits a wall and returns the id of the new second half.
func (e *Editor) SplitWall(id chamber.ChamberID, wid chamber.WallID, at geom.IVec) (chamber.WallID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var fresh chamber.WallID
	err := e.mutate(id, "split", func() error {
		var err error
		fresh, err = e.plan.SplitWall(id, wid, at)
		return err
	}, slog.Any("wall", wid), slog.Int("x", int(at.X)), slog.Int("y", int(at.Y)))
	return fresh, err
}

// CollapseWall merges a wall with its successor and returns the removed id.
// Callers holding that id (selections, attachments) must drop it.
func (e *Editor) CollapseWall(id chamber.ChamberID, wid chamber.WallID) (chamber.WallID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var removed chamber.WallID
	err := e.mutate(id, "collapse", func() error {
		var err error
		removed, err = e.plan.CollapseWall(id, wid)
		return err
	}, slog.Any("wall", wid))
	return removed, err
}

// AddDoor attaches a door to a wall.
func (e *Editor) AddDoor(id chamber.ChamberID, wid chamber.WallID, pos float64) (plan.Door, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var d plan.Door
	err := e.mutate(id, "add_door", func() error {
		var err error
		d, err = e.plan.AddDoor(id, wid, pos)
		return err
	}, slog.Any("wall", wid), slog.Float64("pos", pos))
	return d, err
}

// Rename changes the display name of a chamber.
func (e *Editor) Rename(id chamber.ChamberID, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutate(id, "rename", func() error {
		c, ok := e.plan.Chamber(id)
		if !ok {
			return fmt.Errorf("rename chamber %d: %w", id, plan.ErrChamberNotFound)
		}
		c.Name = name
		return nil
	}, slog.String("name", name))
}

// SetHidden toggles whether a chamber takes part in hit-testing and export.
func (e *Editor) SetHidden(id chamber.ChamberID, hidden bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mutate(id, "set_hidden", func() error {
		c, ok := e.plan.Chamber(id)
		if !ok {
			return fmt.Errorf("hide chamber %d: %w", id, plan.ErrChamberNotFound)
		}
		c.Hidden = hidden
		return nil
	}, slog.Bool("hidden", hidden))
}

// Undo reverts the last edit of a chamber. ok is false when there is nothing to undo.
func (e *Editor) Undo(id chamber.ChamberID) (bool, error) {
	return e.step(id, "undo", e.history.Undo)
}

// Redo reapplies the last undone edit of a chamber.
func (e *Editor) Redo(id chamber.ChamberID) (bool, error) {
	return e.step(id, "redo", e.history.Redo)
}

func (e *Editor) step(id chamber.ChamberID, op string, pop func(uint32, undo.Snapshot) (undo.Snapshot, bool)) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l := applog.WithChamber(applog.WithOperation(e.log, op), uint32(id))
	cur, err := e.capture(id)
	if err != nil {
		return false, err
	}
	s, ok := pop(uint32(id), undo.Snapshot{Blob: cur, TS: e.opts.Now()})
	if !ok {
		l.Debug("history empty")
		return false, nil
	}
	if err := e.restore(s.Blob); err != nil {
		l.Error("restore failed", slog.Any("err", err))
		return false, err
	}
	e.dirty = true
	l.Info("history applied", slog.String("edit", s.Op))
	return true, nil
}

// CanUndo reports whether the chamber has undo history.
func (e *Editor) CanUndo(id chamber.ChamberID) bool { return e.history.CanUndo(uint32(id)) }

// CanRedo reports whether the chamber has redo history.
func (e *Editor) CanRedo(id chamber.ChamberID) bool { return e.history.CanRedo(uint32(id)) }

// mutate runs fn with the chamber's pre-state recorded for undo. Failed edits
// leave no history entry. Callers hold e.mu.
func (e *Editor) mutate(id chamber.ChamberID, op string, fn func() error, attrs ...any) error {
	l := applog.WithChamber(applog.WithOperation(e.log, op), uint32(id))
	pre, err := e.capture(id)
	if err != nil {
		l.Warn("edit rejected", slog.Any("err", err))
		return err
	}
	if err := fn(); err != nil {
		l.Warn("edit rejected", append(attrs, slog.Any("err", err))...)
		return err
	}
	e.history.PushSnapshot(undo.Snapshot{Chamber: uint32(id), Op: op, Blob: pre, TS: e.opts.Now()})
	e.dirty = true
	l.Debug("edit applied", attrs...)
	return nil
}

func (e *Editor) capture(id chamber.ChamberID) ([]byte, error) {
	c, ok := e.plan.Chamber(id)
	if !ok {
		return nil, fmt.Errorf("chamber %d: %w", id, plan.ErrChamberNotFound)
	}
	st := chamberState{Chamber: c.Record()}
	for _, d := range e.plan.DoorsOf(id) {
		st.Doors = append(st.Doors, domain.Door{ID: uint32(d.ID), Chamber: uint32(d.Chamber), Wall: uint32(d.Wall), Pos: d.Pos})
	}
	return json.Marshal(st)
}

func (e *Editor) restore(blob []byte) error {
	var st chamberState
	if err := json.Unmarshal(blob, &st); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	c, err := chamber.FromRecord(st.Chamber)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	e.plan.PutChamber(c)
	doors := make([]plan.Door, 0, len(st.Doors))
	for _, d := range st.Doors {
		doors = append(doors, plan.Door{ID: plan.DoorID(d.ID), Chamber: c.ID, Wall: chamber.WallID(d.Wall), Pos: d.Pos})
	}
	e.plan.SetDoorsOf(c.ID, doors)
	return nil
}
