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

import "chambermap/internal/geom"

// WallID identifies a wall within its owning chamber only. Ids are reused
// after a Collapse and carry no ordering meaning.
type WallID uint32

// Wall is one directed edge P1→P2 of a chamber boundary.
type Wall struct {
	ID      WallID
	Chamber ChamberID
	P1, P2  geom.IVec
}

// Degenerate reports whether the wall has zero length.
func (w Wall) Degenerate() bool { return w.P1 == w.P2 }

// Length returns the Euclidean length of the wall.
func (w Wall) Length() float64 { return geom.Dist(w.P1.Vec(), w.P2.Vec()) }

// project returns the unclamped parameter of p's projection onto the wall's line.
func (w Wall) project(p geom.Vec) float64 {
	a := w.P1.Vec()
	d := geom.Sub(w.P2.Vec(), a)
	l2 := geom.Len2(d)
	if l2 == 0 {
		return 0
	}
	return geom.Dot(geom.Sub(p, a), d) / l2
}

// NearestRelativePos returns the normalized position in [0,1] of the point
// on the wall closest to p, measured from P1. Attachments store this value
// so they keep their relative offset when the wall is resized.
// A degenerate wall yields 0.
func (w Wall) NearestRelativePos(p geom.Vec) float64 {
	return geom.Clamp(w.project(p), 0, 1)
}

// NearestPoint returns the point on the closed segment closest to p.
func (w Wall) NearestPoint(p geom.Vec) geom.Vec {
	return w.PointAt(w.NearestRelativePos(p))
}

// Distance returns the distance from p to the closed segment.
func (w Wall) Distance(p geom.Vec) float64 {
	return geom.Dist(p, w.NearestPoint(p))
}

// PointAt returns P1 + t*(P2-P1).
func (w Wall) PointAt(t float64) geom.Vec {
	return geom.Lerp(w.P1.Vec(), w.P2.Vec(), t)
}

// Tangent returns the unit direction P1→P2. ok is false for a degenerate wall.
func (w Wall) Tangent() (geom.Vec, bool) {
	if w.Degenerate() {
		return geom.Vec{}, false
	}
	return geom.Unit(geom.Sub(w.P2.Vec(), w.P1.Vec())), true
}

// Split cuts the wall at at. The first half keeps the wall's id, the second
// half gets fresh. It does not check that at lies on the segment.
func (w Wall) Split(at geom.IVec, fresh WallID) (Wall, Wall) {
	first := Wall{ID: w.ID, Chamber: w.Chamber, P1: w.P1, P2: at}
	second := Wall{ID: fresh, Chamber: w.Chamber, P1: at, P2: w.P2}
	return first, second
}
