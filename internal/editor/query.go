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
	"fmt"

	"chambermap/internal/chamber"
	"chambermap/internal/geom"
	"chambermap/internal/plan"
)

// Walls returns a copy of a chamber's walls.
func (e *Editor) Walls(id chamber.ChamberID) ([]chamber.Wall, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.plan.Chamber(id)
	if !ok {
		return nil, fmt.Errorf("chamber %d: %w", id, plan.ErrChamberNotFound)
	}
	return c.Walls(), nil
}

// Preview returns the outline the chamber would have after placing v.
func (e *Editor) Preview(id chamber.ChamberID, v geom.IVec, split *chamber.WallID) (chamber.Preview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.plan.Chamber(id)
	if !ok {
		return chamber.Preview{}, fmt.Errorf("preview chamber %d: %w", id, plan.ErrChamberNotFound)
	}
	return c.PreviewProjection(v, split)
}

// Label returns where the chamber's name should be drawn.
func (e *Editor) Label(id chamber.ChamberID) (geom.Vec, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.plan.Chamber(id)
	if !ok {
		return geom.Vec{}, false
	}
	return c.LabelAnchorWithCell(e.opts.SampleCell)
}

// ChamberAt returns the id of the topmost visible chamber containing p.
func (e *Editor) ChamberAt(p geom.Vec) (chamber.ChamberID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.plan.ChamberAt(p)
	if !ok {
		return 0, false
	}
	return c.ID, true
}

// SnapWall returns the wall nearest to p within the configured radius.
func (e *Editor) SnapWall(p geom.Vec) (plan.WallSnap, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan.SnapWall(p, e.opts.WallRadius)
}

// SnapCorner returns the corner nearest to p within the configured radius.
func (e *Editor) SnapCorner(p geom.Vec) (plan.CornerSnap, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan.SnapCorner(p, e.opts.CornerRadius)
}

// Doors returns all doors of the plan.
func (e *Editor) Doors() []plan.Door {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan.Doors()
}
