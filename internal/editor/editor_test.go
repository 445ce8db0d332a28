/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"sync"
	"testing"

	"chambermap/internal/chamber"
	"chambermap/internal/config"
	"chambermap/internal/geom"
	"chambermap/internal/plan"
	"chambermap/internal/undo"
)

func newEditor() *Editor {
	return New(plan.New("test"), Options{History: undo.Config{MinInterval: -1}})
}

func draw(t *testing.T, e *Editor, id chamber.ChamberID, pts ...geom.IVec) {
	t.Helper()
	for _, p := range pts {
		if err := e.PlaceVertex(id, p, nil); err != nil {
			t.Fatalf("PlaceVertex(%v): %v", p, err)
		}
	}
}

func TestPlaceVertexAndUndoRedo(t *testing.T) {
	e := newEditor()
	id := e.NewChamber("hall")
	draw(t, e, id, geom.I(0, 0), geom.I(10, 0), geom.I(10, 10))
	ws, _ := e.Walls(id)
	if len(ws) != 3 {
		t.Fatalf("walls = %d, want 3", len(ws))
	}
	if ok, err := e.Undo(id); !ok || err != nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if ws, _ = e.Walls(id); len(ws) != 2 {
		t.Fatalf("after undo walls = %d, want 2", len(ws))
	}
	if ok, err := e.Redo(id); !ok || err != nil {
		t.Fatalf("Redo = %v, %v", ok, err)
	}
	if ws, _ = e.Walls(id); len(ws) != 3 {
		t.Fatalf("after redo walls = %d, want 3", len(ws))
	}
	// all the way back to an empty chamber
	for e.CanUndo(id) {
		if _, err := e.Undo(id); err != nil {
			t.Fatalf("Undo: %v", err)
		}
	}
	if ws, _ = e.Walls(id); len(ws) != 0 {
		t.Fatalf("fully undone chamber has %d walls", len(ws))
	}
	if ok, _ := e.Undo(id); ok {
		t.Fatalf("undo past the start should report false")
	}
}

func TestSplitCollapseThroughEditor(t *testing.T) {
	e := newEditor()
	id := e.NewChamber("room")
	draw(t, e, id, geom.I(0, 0), geom.I(10, 0), geom.I(10, 10), geom.I(0, 10))
	split := chamber.WallID(0)
	if err := e.PlaceVertex(id, geom.I(5, -2), &split); err != nil {
		t.Fatalf("PlaceVertex split: %v", err)
	}
	ws, _ := e.Walls(id)
	if len(ws) != 5 || ws[1].P1 != geom.I(5, -2) {
		t.Fatalf("walls after split = %+v", ws)
	}
	removed, err := e.CollapseWall(id, 0)
	if err != nil || removed != ws[1].ID {
		t.Fatalf("CollapseWall = %d, %v", removed, err)
	}
	if _, err := e.CollapseWall(id, 99); !errors.Is(err, chamber.ErrWallNotFound) {
		t.Fatalf("expected ErrWallNotFound, got %v", err)
	}
}

func TestFailedEditLeavesNoHistory(t *testing.T) {
	e := newEditor()
	id := e.NewChamber("room")
	draw(t, e, id, geom.I(0, 0))
	if err := e.PlaceVertex(id, geom.I(0, 0), nil); !errors.Is(err, chamber.ErrDegenerateWall) {
		t.Fatalf("expected ErrDegenerateWall, got %v", err)
	}
	if _, err := e.Undo(id); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if e.CanUndo(id) {
		t.Fatalf("only the first placement should be in history")
	}
	if err := e.PlaceVertex(42, geom.I(0, 0), nil); !errors.Is(err, plan.ErrChamberNotFound) {
		t.Fatalf("expected ErrChamberNotFound, got %v", err)
	}
}

func TestUndoRestoresDoors(t *testing.T) {
	e := newEditor()
	id := e.NewChamber("room")
	draw(t, e, id, geom.I(0, 0), geom.I(10, 0), geom.I(10, 10), geom.I(0, 10))
	if _, err := e.AddDoor(id, 0, 0.8); err != nil {
		t.Fatalf("AddDoor: %v", err)
	}
	fresh, err := e.SplitWall(id, 0, geom.I(5, 0))
	if err != nil {
		t.Fatalf("SplitWall: %v", err)
	}
	if d := e.Doors()[0]; d.Wall != fresh {
		t.Fatalf("door not moved to new half: %+v", d)
	}
	if _, err := e.Undo(id); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if d := e.Doors()[0]; d.Wall != 0 || d.Pos != 0.8 {
		t.Fatalf("door not restored: %+v", d)
	}
	if _, err := e.Undo(id); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(e.Doors()) != 0 {
		t.Fatalf("undoing AddDoor should remove the door")
	}
}

func TestRenameHideAndQueries(t *testing.T) {
	e := New(plan.New("test"), OptionsFromConfig(config.Defaults()))
	id := e.NewChamber("a")
	draw(t, e, id, geom.I(0, 0), geom.I(10, 0), geom.I(10, 10), geom.I(0, 10))
	if err := e.Rename(id, "b"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if doc := e.Document(); doc.Chambers[0].Name != "b" {
		t.Fatalf("name = %q", doc.Chambers[0].Name)
	}
	if got, ok := e.ChamberAt(geom.V(5, 5)); !ok || got != id {
		t.Fatalf("ChamberAt = %v %v", got, ok)
	}
	if p, ok := e.Label(id); !ok || p != geom.V(4.5, 4.5) {
		t.Fatalf("Label = %v %v", p, ok)
	}
	if s, ok := e.SnapWall(geom.V(5, 0.2)); !ok || s.Chamber != id {
		t.Fatalf("SnapWall = %+v %v", s, ok)
	}
	if s, ok := e.SnapCorner(geom.V(0.3, 0.3)); !ok || s.Point != geom.V(0, 0) {
		t.Fatalf("SnapCorner = %+v %v", s, ok)
	}
	pv, err := e.Preview(id, geom.I(-5, 5), nil)
	if err != nil || len(pv.Points) != 5 || !pv.Closed {
		t.Fatalf("Preview = %+v %v", pv, err)
	}
	if err := e.SetHidden(id, true); err != nil {
		t.Fatalf("SetHidden: %v", err)
	}
	if _, ok := e.ChamberAt(geom.V(5, 5)); ok {
		t.Fatalf("hidden chamber should not be hit")
	}
	if !e.Dirty() {
		t.Fatalf("editor should be dirty")
	}
	e.MarkClean()
	if e.Dirty() {
		t.Fatalf("MarkClean did not reset dirty")
	}
}

func TestRemoveChamberClearsHistory(t *testing.T) {
	e := newEditor()
	id := e.NewChamber("gone")
	draw(t, e, id, geom.I(0, 0), geom.I(3, 0))
	if err := e.RemoveChamber(id); err != nil {
		t.Fatalf("RemoveChamber: %v", err)
	}
	if e.CanUndo(id) {
		t.Fatalf("history should be cleared")
	}
	if _, err := e.Walls(id); !errors.Is(err, plan.ErrChamberNotFound) {
		t.Fatalf("expected ErrChamberNotFound, got %v", err)
	}
}

func TestConcurrentEditsAreSerialized(t *testing.T) {
	e := newEditor()
	ids := make([]chamber.ChamberID, 8)
	for i := range ids {
		ids[i] = e.NewChamber("c")
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id chamber.ChamberID) {
			defer wg.Done()
			for _, p := range []geom.IVec{geom.I(0, 0), geom.I(4, 0), geom.I(4, 4), geom.I(0, 4)} {
				_ = e.PlaceVertex(id, p, nil)
				_, _ = e.ChamberAt(geom.V(2, 2))
			}
		}(id)
	}
	wg.Wait()
	for _, id := range ids {
		if ws, _ := e.Walls(id); len(ws) != 4 {
			t.Fatalf("chamber %d has %d walls", id, len(ws))
		}
	}
}
