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
	"math"

	"chambermap/internal/geom"
)

// LabelAnchor returns a point well inside the chamber for placing its name:
// the centre of a unit grid cell that lies inside and is farthest from every
// wall. ok is false when no cell centre is inside.
func (c *Chamber) LabelAnchor() (geom.Vec, bool) {
	return c.LabelAnchorWithCell(1)
}

// LabelAnchorWithCell is LabelAnchor with a custom sampling step. Non-positive
// steps fall back to 1. Cells are visited row by row from the box minimum and
// the first maximum wins.
func (c *Chamber) LabelAnchorWithCell(cell float64) (geom.Vec, bool) {
	box, ok := c.BoundingBox()
	if !ok {
		return geom.Vec{}, false
	}
	if !(cell > 0) || math.IsInf(cell, 0) {
		cell = 1
	}
	lo, hi := box.Min.Vec(), box.Max.Vec()
	rows := int(math.Ceil((hi.Y - lo.Y) / cell))
	cols := int(math.Ceil((hi.X - lo.X) / cell))

	var best geom.Vec
	bestD, found := -1.0, false
	for r := 0; r < rows; r++ {
		y := lo.Y + (float64(r)+0.5)*cell
		if y >= hi.Y {
			break
		}
		for q := 0; q < cols; q++ {
			x := lo.X + (float64(q)+0.5)*cell
			if x >= hi.X {
				break
			}
			p := geom.V(x, y)
			if !c.ContainsPoint(p) {
				continue
			}
			if d := c.minWallDistance(p); d > bestD {
				best, bestD, found = p, d, true
			}
		}
	}
	return best, found
}
