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
	"math"
	"sort"

	"chambermap/internal/chamber"
	"chambermap/internal/geom"
)

// WallSnap is the closest wall found near a point.
type WallSnap struct {
	Chamber chamber.ChamberID
	Wall    chamber.Wall
	Point   geom.Vec
	Pos     float64
	Dist    float64
}

// CornerSnap is the closest corner found near a point. In ends at the corner
// and Out starts there.
type CornerSnap struct {
	Chamber chamber.ChamberID
	In, Out chamber.Wall
	Point   geom.Vec
	Dist    float64
}

func (p *Plan) visibleNear(pt geom.Vec, radius float64) []*chamber.Chamber {
	ids := p.index.near(pt, radius)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*chamber.Chamber, 0, len(ids))
	for _, id := range ids {
		if c, ok := p.chambers[id]; ok && !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// ChamberAt returns the topmost visible chamber containing pt. Chambers with
// higher ids are drawn later and therefore win.
func (p *Plan) ChamberAt(pt geom.Vec) (*chamber.Chamber, bool) {
	cands := p.visibleNear(pt, 0)
	for i := len(cands) - 1; i >= 0; i-- {
		if cands[i].ContainsPoint(pt) {
			return cands[i], true
		}
	}
	return nil, false
}

// SnapWall returns the visible wall nearest to pt within radius.
func (p *Plan) SnapWall(pt geom.Vec, radius float64) (WallSnap, bool) {
	best := WallSnap{Dist: math.Inf(1)}
	found := false
	for _, c := range p.visibleNear(pt, radius) {
		w, ok := c.NearestWall(pt)
		if !ok {
			continue
		}
		if d := w.Distance(pt); d <= radius && d < best.Dist {
			best = WallSnap{Chamber: c.ID, Wall: w, Point: w.NearestPoint(pt), Pos: w.NearestRelativePos(pt), Dist: d}
			found = true
		}
	}
	return best, found
}

// SnapCorner returns the visible corner nearest to pt within radius.
func (p *Plan) SnapCorner(pt geom.Vec, radius float64) (CornerSnap, bool) {
	best := CornerSnap{Dist: math.Inf(1)}
	found := false
	for _, c := range p.visibleNear(pt, radius) {
		in, out, ok := c.NearestCorner(pt)
		if !ok {
			continue
		}
		corner := in.P2.Vec()
		if d := geom.Dist(pt, corner); d <= radius && d < best.Dist {
			best = CornerSnap{Chamber: c.ID, In: in, Out: out, Point: corner, Dist: d}
			found = true
		}
	}
	return best, found
}

// ChambersIn returns the ids of chambers whose bounding box overlaps box, ordered by id.
func (p *Plan) ChambersIn(box geom.IBox) []chamber.ChamberID {
	c := box.Center()
	half := math.Max(float64(box.Size().X), float64(box.Size().Y)) / 2
	var out []chamber.ChamberID
	for _, id := range p.index.near(c, half) {
		cb, ok := p.chambers[id].BoundingBox()
		if !ok {
			continue
		}
		if cb.Max.X >= box.Min.X && cb.Min.X <= box.Max.X && cb.Max.Y >= box.Min.Y && cb.Min.Y <= box.Max.Y {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
