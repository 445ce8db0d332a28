/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package plan

import (
	"fmt"

	"chambermap/internal/chamber"
	"chambermap/internal/geom"
)

// Append places the next vertex of a chamber. Doors on the closing wall are
// moved to whichever of the two resulting walls lies nearest.
func (p *Plan) Append(cid chamber.ChamberID, v geom.IVec) error {
	c, ok := p.chambers[cid]
	if !ok {
		return fmt.Errorf("append: chamber %d: %w", cid, ErrChamberNotFound)
	}
	ws := c.Walls()
	if err := c.Append(v); err != nil {
		return err
	}
	if len(ws) >= 2 {
		closing := ws[len(ws)-1]
		after := c.Walls()
		p.reattach(cid, closing, after[len(after)-2], after[len(after)-1])
	}
	p.Reindex(cid)
	return nil
}

// SplitWall splits a wall and re-attaches its doors to the nearer half.
func (p *Plan) SplitWall(cid chamber.ChamberID, wid chamber.WallID, at geom.IVec) (chamber.WallID, error) {
	c, ok := p.chambers[cid]
	if !ok {
		return 0, fmt.Errorf("split: chamber %d: %w", cid, ErrChamberNotFound)
	}
	old, _ := c.Wall(wid)
	fresh, err := c.Split(wid, at)
	if err != nil {
		return 0, err
	}
	a, _ := c.Wall(wid)
	b, _ := c.Wall(fresh)
	p.reattach(cid, old, a, b)
	p.Reindex(cid)
	return fresh, nil
}

// CollapseWall merges a wall with its successor and returns the removed id.
// Doors on either wall move to the merged wall. When the chamber loses its
// walls, its doors are removed.
func (p *Plan) CollapseWall(cid chamber.ChamberID, wid chamber.WallID) (chamber.WallID, error) {
	c, ok := p.chambers[cid]
	if !ok {
		return 0, fmt.Errorf("collapse: chamber %d: %w", cid, ErrChamberNotFound)
	}
	old, _ := c.Wall(wid)
	removed, err := c.Collapse(wid)
	if err != nil {
		return 0, err
	}
	if c.WallCount() == 0 {
		p.SetDoorsOf(cid, nil)
	} else {
		merged, _ := c.Wall(wid)
		succ := chamber.Wall{ID: removed, Chamber: cid, P1: old.P2, P2: merged.P2}
		p.reattach(cid, old, merged)
		p.reattach(cid, succ, merged)
	}
	p.Reindex(cid)
	return removed, nil
}

// reattach moves doors on old to the nearest candidate wall by their absolute position.
func (p *Plan) reattach(cid chamber.ChamberID, old chamber.Wall, cands ...chamber.Wall) {
	for _, d := range p.doors {
		if d.Chamber != cid || d.Wall != old.ID {
			continue
		}
		abs := old.PointAt(d.Pos)
		best := cands[0]
		for _, w := range cands[1:] {
			if w.Distance(abs) < best.Distance(abs) {
				best = w
			}
		}
		d.Wall = best.ID
		d.Pos = best.NearestRelativePos(abs)
	}
}
