/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package chamber

import (
	"fmt"
	"image/color"

	"chambermap/internal/domain"
	"chambermap/internal/geom"
)

// Record returns the persisted form of the chamber.
func (c *Chamber) Record() domain.Chamber {
	rec := domain.Chamber{
		ID:     uint32(c.ID),
		Name:   c.Name,
		Notes:  c.Notes,
		Hidden: c.Hidden,
		Color:  domain.Color{R: c.Color.R, G: c.Color.G, B: c.Color.B, A: c.Color.A},
		Walls:  make([]domain.Wall, 0, len(c.walls)),
	}
	if f, ok := c.PendingFirst(); ok {
		rec.First = &domain.Point{X: f.X, Y: f.Y}
	}
	for _, w := range c.walls {
		rec.Walls = append(rec.Walls, domain.Wall{
			ID: uint32(w.ID),
			P1: domain.Point{X: w.P1.X, Y: w.P1.Y},
			P2: domain.Point{X: w.P2.X, Y: w.P2.Y},
		})
	}
	return rec
}

// FromRecord rebuilds a chamber from its persisted form. The walls must form
// one closed loop with unique ids. When walls are present, First is ignored.
func FromRecord(rec domain.Chamber) (*Chamber, error) {
	c := &Chamber{
		ID:     ChamberID(rec.ID),
		Name:   rec.Name,
		Notes:  rec.Notes,
		Hidden: rec.Hidden,
		Color:  color.RGBA{R: rec.Color.R, G: rec.Color.G, B: rec.Color.B, A: rec.Color.A},
	}
	n := len(rec.Walls)
	if n == 0 {
		if rec.First != nil {
			f := geom.I(rec.First.X, rec.First.Y)
			c.first = &f
		}
		return c, nil
	}
	if n == 1 {
		return nil, fmt.Errorf("chamber %d: single wall: %w", rec.ID, ErrBrokenLoop)
	}
	seen := make(map[uint32]struct{}, n)
	c.walls = make([]Wall, n)
	for i, w := range rec.Walls {
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("chamber %d: wall %d: %w", rec.ID, w.ID, ErrDuplicateWallID)
		}
		seen[w.ID] = struct{}{}
		c.walls[i] = Wall{
			ID:      WallID(w.ID),
			Chamber: c.ID,
			P1:      geom.I(w.P1.X, w.P1.Y),
			P2:      geom.I(w.P2.X, w.P2.Y),
		}
	}
	for i, w := range c.walls {
		if next := c.walls[(i+1)%n]; w.P2 != next.P1 {
			return nil, fmt.Errorf("chamber %d: wall %d does not meet wall %d: %w", rec.ID, w.ID, next.ID, ErrBrokenLoop)
		}
	}
	return c, nil
}
