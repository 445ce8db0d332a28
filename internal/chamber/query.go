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

// ContainsPoint reports whether p lies inside the polygon using a horizontal
// ray cast towards -x. A wall counts when p.Y lies within its closed y-range
// and the crossing is strictly left of p. Horizontal walls never count.
// Points exactly on the boundary may be reported either way.
func (c *Chamber) ContainsPoint(p geom.Vec) bool {
	inside := false
	for _, w := range c.walls {
		a, b := w.P1.Vec(), w.P2.Vec()
		if a.Y == b.Y {
			continue
		}
		if math.Min(a.Y, b.Y) > p.Y || math.Max(a.Y, b.Y) < p.Y {
			continue
		}
		x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x < p.X {
			inside = !inside
		}
	}
	return inside
}

// NearestWall returns the wall closest to p. Ties go to the earlier wall.
func (c *Chamber) NearestWall(p geom.Vec) (Wall, bool) {
	if len(c.walls) == 0 {
		return Wall{}, false
	}
	best, bestD := 0, math.Inf(1)
	for i, w := range c.walls {
		if d := w.Distance(p); d < bestD {
			best, bestD = i, d
		}
	}
	return c.walls[best], true
}

// NearestCorner returns the pair of walls meeting at the vertex closest to p:
// the wall ending there and its successor starting there.
func (c *Chamber) NearestCorner(p geom.Vec) (Wall, Wall, bool) {
	n := len(c.walls)
	if n == 0 {
		return Wall{}, Wall{}, false
	}
	best, bestD := 0, math.Inf(1)
	for i, w := range c.walls {
		if d := geom.Dist2(p, w.P2.Vec()); d < bestD {
			best, bestD = i, d
		}
	}
	return c.walls[best], c.walls[(best+1)%n], true
}

// BoundingBox returns the axis-aligned box over all wall start points.
func (c *Chamber) BoundingBox() (geom.IBox, bool) {
	if len(c.walls) == 0 {
		return geom.IBox{}, false
	}
	box := geom.BoxOf(c.walls[0].P1)
	for _, w := range c.walls[1:] {
		box = box.Extend(w.P1)
	}
	return box, true
}

// SignedArea returns the shoelace area; positive for counter-clockwise
// winding in a y-up frame.
func (c *Chamber) SignedArea() float64 {
	var sum float64
	for _, w := range c.walls {
		a, b := w.P1.Vec(), w.P2.Vec()
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Area returns the absolute polygon area.
func (c *Chamber) Area() float64 { return math.Abs(c.SignedArea()) }

// Perimeter returns the total wall length.
func (c *Chamber) Perimeter() float64 {
	var sum float64
	for _, w := range c.walls {
		sum += w.Length()
	}
	return sum
}

func (c *Chamber) minWallDistance(p geom.Vec) float64 {
	d := math.Inf(1)
	for _, w := range c.walls {
		d = math.Min(d, w.Distance(p))
	}
	return d
}
