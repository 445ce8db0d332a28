/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package plan holds the chambers and doors of one floor plan and answers
// cross-chamber queries (hit-testing and snapping) through an R-tree over
// chamber bounding boxes.
package plan

import (
	"errors"
	"fmt"
	"sort"

	"chambermap/internal/chamber"
	"chambermap/internal/domain"
	"chambermap/internal/geom"
)

var (
	ErrChamberNotFound = errors.New("chamber not found")
	ErrDoorNotFound    = errors.New("door not found")
)

// DoorID identifies a door within a plan.
type DoorID uint32

// Door is attached to a wall at a relative position along it, 0 at P1 and 1 at P2.
type Door struct {
	ID      DoorID
	Chamber chamber.ChamberID
	Wall    chamber.WallID
	Pos     float64
}

// Plan is a collection of chambers. It is not safe for concurrent use.
type Plan struct {
	Name     string
	Metadata domain.Metadata
	Grid     domain.Grid

	chambers map[chamber.ChamberID]*chamber.Chamber
	doors    map[DoorID]*Door
	index    *spatialIndex
}

// New returns an empty plan.
func New(name string) *Plan {
	return &Plan{
		Name:     name,
		Grid:     domain.Grid{CellSize: 20, Unit: "ft"},
		chambers: map[chamber.ChamberID]*chamber.Chamber{},
		doors:    map[DoorID]*Door{},
		index:    newSpatialIndex(),
	}
}

// AddChamber creates an empty chamber with the next free id.
func (p *Plan) AddChamber(name string) *chamber.Chamber {
	var id chamber.ChamberID
	for k := range p.chambers {
		if k >= id {
			id = k + 1
		}
	}
	c := chamber.New(id, name)
	p.chambers[id] = c
	return c
}

// PutChamber stores c, replacing any chamber with the same id, and reindexes it.
func (p *Plan) PutChamber(c *chamber.Chamber) {
	p.chambers[c.ID] = c
	p.Reindex(c.ID)
}

// RemoveChamber deletes a chamber and the doors attached to it.
func (p *Plan) RemoveChamber(id chamber.ChamberID) error {
	if _, ok := p.chambers[id]; !ok {
		return fmt.Errorf("remove chamber %d: %w", id, ErrChamberNotFound)
	}
	delete(p.chambers, id)
	p.index.remove(id)
	for did, d := range p.doors {
		if d.Chamber == id {
			delete(p.doors, did)
		}
	}
	return nil
}

// Chamber returns the chamber with the given id.
func (p *Plan) Chamber(id chamber.ChamberID) (*chamber.Chamber, bool) {
	c, ok := p.chambers[id]
	return c, ok
}

// Chambers returns all chambers ordered by id.
func (p *Plan) Chambers() []*chamber.Chamber {
	out := make([]*chamber.Chamber, 0, len(p.chambers))
	for _, c := range p.chambers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reindex refreshes the spatial index entry of a chamber after its walls changed.
func (p *Plan) Reindex(id chamber.ChamberID) {
	c, ok := p.chambers[id]
	if !ok {
		p.index.remove(id)
		return
	}
	p.index.update(c)
}

// Area returns the polygon area of a chamber.
func (p *Plan) Area(id chamber.ChamberID) (float64, bool) {
	c, ok := p.chambers[id]
	if !ok {
		return 0, false
	}
	return c.Area(), true
}

// AddDoor attaches a door to a wall. pos is clamped to [0,1].
func (p *Plan) AddDoor(cid chamber.ChamberID, wid chamber.WallID, pos float64) (Door, error) {
	c, ok := p.chambers[cid]
	if !ok {
		return Door{}, fmt.Errorf("add door: chamber %d: %w", cid, ErrChamberNotFound)
	}
	if _, ok := c.Wall(wid); !ok {
		return Door{}, fmt.Errorf("add door: chamber %d wall %d: %w", cid, wid, chamber.ErrWallNotFound)
	}
	var id DoorID
	for k := range p.doors {
		if k >= id {
			id = k + 1
		}
	}
	d := &Door{ID: id, Chamber: cid, Wall: wid, Pos: geom.Clamp(pos, 0, 1)}
	p.doors[id] = d
	return *d, nil
}

// RemoveDoor deletes a door.
func (p *Plan) RemoveDoor(id DoorID) error {
	if _, ok := p.doors[id]; !ok {
		return fmt.Errorf("remove door %d: %w", id, ErrDoorNotFound)
	}
	delete(p.doors, id)
	return nil
}

// Doors returns all doors ordered by id.
func (p *Plan) Doors() []Door {
	out := make([]Door, 0, len(p.doors))
	for _, d := range p.doors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DoorsOf returns the doors of one chamber ordered by id.
func (p *Plan) DoorsOf(cid chamber.ChamberID) []Door {
	var out []Door
	for _, d := range p.Doors() {
		if d.Chamber == cid {
			out = append(out, d)
		}
	}
	return out
}

// SetDoorsOf replaces the doors of one chamber, keeping their ids.
func (p *Plan) SetDoorsOf(cid chamber.ChamberID, doors []Door) {
	for did, d := range p.doors {
		if d.Chamber == cid {
			delete(p.doors, did)
		}
	}
	for _, d := range doors {
		d := d
		d.Chamber = cid
		p.doors[d.ID] = &d
	}
}

// DoorPoint returns the absolute position of a door and the tangent of its wall.
func (p *Plan) DoorPoint(d Door) (geom.Vec, geom.Vec, bool) {
	c, ok := p.chambers[d.Chamber]
	if !ok {
		return geom.Vec{}, geom.Vec{}, false
	}
	w, ok := c.Wall(d.Wall)
	if !ok {
		return geom.Vec{}, geom.Vec{}, false
	}
	tan, ok := w.Tangent()
	if !ok {
		return geom.Vec{}, geom.Vec{}, false
	}
	return w.PointAt(d.Pos), tan, true
}
