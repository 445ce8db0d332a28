/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package chamber implements the closed-polygon room primitive of a floor
// plan: an ordered cycle of walls built vertex by vertex and edited by
// splitting and collapsing walls.
//
// A Chamber is not safe for concurrent use. Callers serialize access through
// the editor package.
package chamber

import (
	"fmt"
	"image/color"
	"slices"

	"chambermap/internal/geom"
)

// ChamberID identifies a chamber within a plan.
type ChamberID uint32

// Chamber is a closed polygon stored as a cyclic sequence of walls where
// walls[i].P2 == walls[(i+1)%n].P1. While fewer than two vertices have been
// placed there are no walls and the first vertex, if any, is held pending.
type Chamber struct {
	ID     ChamberID
	Name   string
	Notes  string
	Hidden bool
	Color  color.RGBA

	walls []Wall
	first *geom.IVec
}

// New returns an empty chamber.
func New(id ChamberID, name string) *Chamber {
	return &Chamber{ID: id, Name: name, Color: color.RGBA{R: 0xd8, G: 0xcf, B: 0xb8, A: 0xff}}
}

// Walls returns a copy of the wall cycle in order.
func (c *Chamber) Walls() []Wall { return slices.Clone(c.walls) }

// WallCount returns the number of walls.
func (c *Chamber) WallCount() int { return len(c.walls) }

// Wall returns the wall with the given id.
func (c *Chamber) Wall(id WallID) (Wall, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.walls[i], true
	}
	return Wall{}, false
}

// VertexCount returns the number of placed vertices (0, 1, or the wall count).
func (c *Chamber) VertexCount() int {
	switch {
	case len(c.walls) > 0:
		return len(c.walls)
	case c.first != nil:
		return 1
	default:
		return 0
	}
}

// Vertices returns the polygon's vertices in wall order.
func (c *Chamber) Vertices() []geom.IVec {
	if len(c.walls) == 0 {
		if c.first != nil {
			return []geom.IVec{*c.first}
		}
		return nil
	}
	out := make([]geom.IVec, len(c.walls))
	for i, w := range c.walls {
		out[i] = w.P1
	}
	return out
}

// PendingFirst returns the single placed vertex of a chamber that has no walls yet.
func (c *Chamber) PendingFirst() (geom.IVec, bool) {
	if c.first == nil || len(c.walls) > 0 {
		return geom.IVec{}, false
	}
	return *c.first, true
}

// Closed reports whether the chamber has at least one wall cycle.
func (c *Chamber) Closed() bool { return len(c.walls) >= 2 }

// Append places the next vertex of the polygon.
//
// The first vertex is held pending. The second closes a two-wall loop
// v0→v1→v0. Every further vertex splits the closing wall (the last one,
// ending at the first vertex): a fresh wall runs from the closing wall's old
// start to v and the closing wall, keeping its id, now starts at v.
func (c *Chamber) Append(v geom.IVec) error {
	switch {
	case len(c.walls) == 0 && c.first == nil:
		c.first = &v
	case len(c.walls) == 0:
		f := *c.first
		if v == f {
			return fmt.Errorf("append (%d,%d): %w", v.X, v.Y, ErrDegenerateWall)
		}
		id := c.nextWallID()
		c.walls = []Wall{
			{ID: id, Chamber: c.ID, P1: f, P2: v},
			{ID: id + 1, Chamber: c.ID, P1: v, P2: f},
		}
		c.first = nil
	default:
		n := len(c.walls)
		closing := c.walls[n-1]
		if v == closing.P1 || v == closing.P2 {
			return fmt.Errorf("append (%d,%d): %w", v.X, v.Y, ErrDegenerateWall)
		}
		inserted := Wall{ID: c.nextWallID(), Chamber: c.ID, P1: closing.P1, P2: v}
		closing.P1 = v
		c.walls = append(c.walls[:n-1], inserted, closing)
	}
	return nil
}

// Split cuts wall id at the point at. The original wall keeps its id and ends
// at at; a new wall from at to the original end is inserted right after it.
// The new wall's id is returned.
func (c *Chamber) Split(id WallID, at geom.IVec) (WallID, error) {
	i := c.indexOf(id)
	if i < 0 {
		return 0, fmt.Errorf("split wall %d: %w", id, ErrWallNotFound)
	}
	w := c.walls[i]
	if at == w.P1 || at == w.P2 {
		return 0, fmt.Errorf("split wall %d at (%d,%d): %w", id, at.X, at.Y, ErrDegenerateWall)
	}
	fresh := c.nextWallID()
	first, second := w.Split(at, fresh)
	c.walls[i] = first
	c.walls = slices.Insert(c.walls, i+1, second)
	return fresh, nil
}

// Collapse removes the vertex at the end of wall id by merging the wall with
// its cyclic successor. The successor is removed and its id returned.
//
// Collapsing a two-wall chamber leaves a single pending vertex, the start of
// the collapsed wall.
func (c *Chamber) Collapse(id WallID) (WallID, error) {
	i := c.indexOf(id)
	if i < 0 {
		return 0, fmt.Errorf("collapse wall %d: %w", id, ErrWallNotFound)
	}
	n := len(c.walls)
	j := (i + 1) % n
	removed := c.walls[j].ID
	if n <= 2 {
		v := c.walls[i].P1
		c.walls = nil
		c.first = &v
		return removed, nil
	}
	merged := c.walls[i]
	merged.P2 = c.walls[j].P2
	if merged.Degenerate() {
		return 0, fmt.Errorf("collapse wall %d: %w", id, ErrDegenerateWall)
	}
	c.walls[i] = merged
	c.walls = slices.Delete(c.walls, j, j+1)
	return removed, nil
}

// Clone returns a deep copy.
func (c *Chamber) Clone() *Chamber {
	out := *c
	out.walls = slices.Clone(c.walls)
	if c.first != nil {
		f := *c.first
		out.first = &f
	}
	return &out
}

func (c *Chamber) indexOf(id WallID) int {
	for i, w := range c.walls {
		if w.ID == id {
			return i
		}
	}
	return -1
}

func (c *Chamber) nextWallID() WallID {
	if len(c.walls) == 0 {
		return 0
	}
	var hi WallID
	for _, w := range c.walls {
		if w.ID > hi {
			hi = w.ID
		}
	}
	return hi + 1
}
